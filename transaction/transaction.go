package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/mezonai/powchain/codec"
	"github.com/mezonai/powchain/errors"
)

// CoinbaseVout marks the single input of a coinbase transaction.
const CoinbaseVout = -1

// DefaultReward is minted by a coinbase when no reward is configured.
const DefaultReward uint64 = 100

// TXInput references output Vout of transaction Txid. ScriptSig is a
// placeholder authorization string compared verbatim against addresses.
type TXInput struct {
	_         struct{} `cbor:",toarray"`
	Txid      string   `json:"txid"`
	Vout      int      `json:"vout"`
	ScriptSig string   `json:"script_sig"`
}

// TXOutput carries Value to whoever presents ScriptPubKey.
type TXOutput struct {
	_            struct{} `cbor:",toarray"`
	Value        uint64   `json:"value"`
	ScriptPubKey string   `json:"script_pub_key"`
}

type Transaction struct {
	_    struct{}   `cbor:",toarray"`
	ID   string     `json:"id"`
	Vin  []TXInput  `json:"vin"`
	Vout []TXOutput `json:"vout"`
}

// CanUnlockOutputWith reports whether the input was signed off by address.
func (in TXInput) CanUnlockOutputWith(address string) bool {
	return in.ScriptSig == address
}

// CanBeUnlockedWith reports whether the output belongs to address.
func (out TXOutput) CanBeUnlockedWith(address string) bool {
	return out.ScriptPubKey == address
}

// IsCoinbase reports whether tx mints value instead of spending outputs.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Vin) == 1 && tx.Vin[0].Txid == "" && tx.Vin[0].Vout == CoinbaseVout
}

// Hash computes the id of tx: the hex SHA-256 of its canonical encoding with ID cleared.
func (tx *Transaction) Hash() (string, error) {
	body := Transaction{Vin: tx.Vin, Vout: tx.Vout}
	data, err := codec.Marshal(&body)
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SetID stamps tx with its content hash.
func (tx *Transaction) SetID() error {
	id, err := tx.Hash()
	if err != nil {
		return err
	}
	tx.ID = id
	return nil
}

// NewCoinbaseTX mints reward to address to. The unlock data is data (or a
// reward note when data is empty) followed by a random suffix, so two
// coinbases never share an id even with identical arguments. An empty to
// mints nothing and the transaction has no outputs. It fails only when both
// to and data are empty.
func NewCoinbaseTX(to, data string, reward uint64) (*Transaction, error) {
	if to == "" && data == "" {
		return nil, errors.NewError(errors.ErrCodeInvalidTransaction, "coinbase needs a recipient or data")
	}
	if data == "" {
		data = fmt.Sprintf("Reward to '%s'", to)
	}

	tx := &Transaction{
		Vin: []TXInput{{
			Txid:      "",
			Vout:      CoinbaseVout,
			ScriptSig: fmt.Sprintf("%s (%s)", data, uuid.NewString()),
		}},
	}
	if to != "" {
		tx.Vout = []TXOutput{{
			Value:        reward,
			ScriptPubKey: to,
		}}
	}
	if err := tx.SetID(); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewPayloadTX wraps an arbitrary string as a block payload: a coinbase
// shaped transaction with no outputs, so it never shows up in any balance.
func NewPayloadTX(data string) (*Transaction, error) {
	if data == "" {
		return nil, errors.NewError(errors.ErrCodeInvalidTransaction, "payload must not be empty")
	}
	return NewCoinbaseTX("", data, 0)
}
