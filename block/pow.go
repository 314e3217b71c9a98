package block

import (
	"context"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/transaction"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is how many nonces a parallel worker tries between
// looks at the cancellation signal.
const cancelCheckInterval = 1024

// Miner seals blocks by proof-of-work.
//
// The nonce search has no upper bound and no timeout. At the configured
// difficulty it ends after about 16^difficulty attempts, but nothing stops a
// pathological input from searching forever; that is accepted as part of
// proof-of-work and is not reported as an error.
type Miner struct {
	difficulty uint32
	workers    int
	clock      func() time.Time
}

type MinerOption func(*Miner)

// WithWorkers splits the nonce space across n goroutines. The first worker to
// find a valid nonce wins and the others are cancelled. n <= 1 searches on the
// calling goroutine.
func WithWorkers(n int) MinerOption {
	return func(m *Miner) {
		if n > 1 {
			m.workers = n
		}
	}
}

// WithClock replaces time.Now for stamping candidates.
func WithClock(clock func() time.Time) MinerOption {
	return func(m *Miner) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewMiner(difficulty uint32, opts ...MinerOption) *Miner {
	m := &Miner{
		difficulty: difficulty,
		workers:    1,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Miner) Difficulty() uint32 {
	return m.difficulty
}

func (m *Miner) Now() time.Time {
	return m.clock()
}

// Mine stamps a candidate at the miner's clock and seals it.
func (m *Miner) Mine(txs []*transaction.Transaction, prevHash string, height uint64) (*Block, error) {
	b, err := NewCandidate(txs, prevHash, height, m.difficulty, m.clock())
	if err != nil {
		return nil, err
	}
	if err := m.Seal(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Seal searches nonces from 0 upward until the digest meets b.Difficulty, then
// sets b.Nonce and b.Hash. The timestamp is not refreshed between attempts.
func (m *Miner) Seal(b *Block) error {
	logx.Debug("POW", "Mining the block at height ", b.Height)
	prefix, err := b.preimagePrefix()
	if err != nil {
		return err
	}

	var iterations uint64
	if m.workers > 1 {
		iterations, err = m.sealParallel(b, prefix)
	} else {
		iterations, err = sealSerial(b, prefix)
	}
	if err != nil {
		return err
	}

	monitoring.RecordMiningIterations(iterations)
	logx.Debug("POW", "total iteration: ", iterations)
	return nil
}

func sealSerial(b *Block, prefix []byte) (uint64, error) {
	for nonce := int64(0); ; nonce++ {
		sum, err := hashWithNonce(prefix, nonce)
		if err != nil {
			return uint64(nonce), err
		}
		if meetsDifficulty(sum, b.Difficulty) {
			b.Nonce = nonce
			b.Hash = hex.EncodeToString(sum[:])
			return uint64(nonce), nil
		}
	}
}

type sealResult struct {
	nonce int64
	hash  string
}

func (m *Miner) sealParallel(b *Block, prefix []byte) (uint64, error) {
	parent, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(parent)

	found := make(chan sealResult, 1)
	var iterations atomic.Uint64
	step := int64(m.workers)

	for w := 0; w < m.workers; w++ {
		start := int64(w)
		g.Go(func() error {
			var tried uint64
			defer func() { iterations.Add(tried) }()
			for nonce := start; ; nonce += step {
				if tried%cancelCheckInterval == 0 {
					select {
					case <-ctx.Done():
						return nil
					default:
					}
				}
				tried++
				sum, err := hashWithNonce(prefix, nonce)
				if err != nil {
					return err
				}
				if meetsDifficulty(sum, b.Difficulty) {
					select {
					case found <- sealResult{nonce: nonce, hash: hex.EncodeToString(sum[:])}:
						cancel()
					default:
					}
					return nil
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return iterations.Load(), err
	}
	r := <-found
	b.Nonce = r.nonce
	b.Hash = r.hash
	return iterations.Load(), nil
}

// Mine builds and seals a block on the calling goroutine.
func Mine(txs []*transaction.Transaction, prevHash string, height uint64, difficulty uint32) (*Block, error) {
	return NewMiner(difficulty).Mine(txs, prevHash, height)
}

// NewGenesisBlock mines height 0 with an empty parent hash around coinbase.
func NewGenesisBlock(coinbase *transaction.Transaction, m *Miner) (*Block, error) {
	return m.Mine([]*transaction.Transaction{coinbase}, "", 0)
}
