package block

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mezonai/powchain/codec"
	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/transaction"
)

// DefaultDifficulty is the number of leading '0' hex characters a block hash needs.
const DefaultDifficulty uint32 = 4

// MaxDifficulty is the length of a hex-encoded SHA-256 digest.
const MaxDifficulty uint32 = sha256.Size * 2

// Block is sealed once by a Miner and never mutated after it is persisted.
type Block struct {
	_            struct{}                   `cbor:",toarray"`
	Timestamp    int64                      `json:"timestamp"` // ms since epoch, fixed before the nonce search
	Transactions []*transaction.Transaction `json:"transactions"`
	PrevHash     string                     `json:"prev_hash"` // "" only for genesis
	Hash         string                     `json:"hash"`
	Height       uint64                     `json:"height"`
	Nonce        int64                      `json:"nonce"`
	Difficulty   uint32                     `json:"difficulty"`
}

// hashPreimage lists exactly what the block hash commits to, in order.
type hashPreimage struct {
	_            struct{} `cbor:",toarray"`
	PrevHash     string
	Transactions []*transaction.Transaction
	Timestamp    int64
	Difficulty   uint32
	Nonce        int64
}

// NewCandidate builds an unsealed block stamped with now.
func NewCandidate(txs []*transaction.Transaction, prevHash string, height uint64, difficulty uint32, now time.Time) (*Block, error) {
	ms := now.UnixMilli()
	if ms <= 0 {
		return nil, errors.Newf(errors.ErrCodeClock, "clock reports %d ms since epoch", ms)
	}
	return &Block{
		Timestamp:    ms,
		Transactions: txs,
		PrevHash:     prevHash,
		Height:       height,
		Nonce:        0,
		Difficulty:   difficulty,
	}, nil
}

// preimagePrefix encodes every preimage field except the nonce. Appending the
// encoded nonce gives the same bytes as encoding the whole hashPreimage.
func (b *Block) preimagePrefix() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(codec.ArrayHeader(5))
	for _, field := range []interface{}{b.PrevHash, b.Transactions, b.Timestamp, b.Difficulty} {
		enc, err := codec.Marshal(field)
		if err != nil {
			return nil, fmt.Errorf("failed to encode block field: %w", err)
		}
		buf.Write(enc)
	}
	return buf.Bytes(), nil
}

func hashWithNonce(prefix []byte, nonce int64) ([sha256.Size]byte, error) {
	enc, err := codec.Marshal(nonce)
	if err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("failed to encode nonce: %w", err)
	}
	h := sha256.New()
	h.Write(prefix)
	h.Write(enc)
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// ComputeHash recomputes the digest from the stored fields; Hash is ignored.
func (b *Block) ComputeHash() (string, error) {
	prefix, err := b.preimagePrefix()
	if err != nil {
		return "", err
	}
	sum, err := hashWithNonce(prefix, b.Nonce)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

// Validate reports whether Hash is the digest of the block's fields and meets
// the block's difficulty. It has no side effects.
func (b *Block) Validate() bool {
	computed, err := b.ComputeHash()
	if err != nil {
		return false
	}
	return computed == b.Hash && MeetsDifficulty(b.Hash, b.Difficulty)
}

func (b *Block) IsGenesis() bool {
	return b.PrevHash == "" && b.Height == 0
}

// Serialize returns the canonical encoding persisted under the block hash.
func (b *Block) Serialize() ([]byte, error) {
	return codec.Marshal(b)
}

// Deserialize decodes a persisted block.
func Deserialize(data []byte) (*Block, error) {
	var b Block
	if err := codec.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// MeetsDifficulty checks the leading-zero predicate on a hex digest.
func MeetsDifficulty(hexHash string, difficulty uint32) bool {
	if uint32(len(hexHash)) < difficulty {
		return false
	}
	for i := uint32(0); i < difficulty; i++ {
		if hexHash[i] != '0' {
			return false
		}
	}
	return true
}

// meetsDifficulty is MeetsDifficulty on the raw digest: d hex zeros are d/2
// zero bytes plus a zero high nibble when d is odd.
func meetsDifficulty(sum [sha256.Size]byte, difficulty uint32) bool {
	if difficulty > MaxDifficulty {
		return false
	}
	full := difficulty / 2
	for i := uint32(0); i < full; i++ {
		if sum[i] != 0 {
			return false
		}
	}
	if difficulty%2 == 1 && sum[full]>>4 != 0 {
		return false
	}
	return true
}
