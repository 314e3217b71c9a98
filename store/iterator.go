package store

import "github.com/mezonai/powchain/block"

// Direction picks the traversal order of a ChainIterator.
type Direction int

const (
	// Backward walks prev-hash links from the tip to genesis.
	Backward Direction = iota
	// Forward walks the height index from genesis to the tip.
	Forward
)

// ChainIterator is a read-only cursor over a ChainStore. It holds no blocks of
// its own, only the store reference and its position.
type ChainIterator struct {
	cs        *ChainStore
	direction Direction

	// backward cursor
	hash string

	// forward cursor
	height  uint64
	tipHash string
	done    bool
}

// NewBackwardIterator starts at the block LAST points at when called.
func NewBackwardIterator(cs *ChainStore) *ChainIterator {
	return &ChainIterator{cs: cs, direction: Backward, hash: cs.TipHash()}
}

// NewForwardIterator starts at genesis.
func NewForwardIterator(cs *ChainStore) *ChainIterator {
	return &ChainIterator{cs: cs, direction: Forward, tipHash: cs.TipHash()}
}

// Next returns the next block, or (nil, nil) once the walk is over.
func (it *ChainIterator) Next() (*block.Block, error) {
	if it.direction == Forward {
		return it.nextForward()
	}
	return it.nextBackward()
}

// nextBackward stops when the cursor is empty or the hash is not stored.
func (it *ChainIterator) nextBackward() (*block.Block, error) {
	if it.hash == "" {
		return nil, nil
	}

	b, err := it.cs.GetByHash(it.hash)
	if err != nil {
		return nil, err
	}
	if b == nil {
		it.hash = ""
		return nil, nil
	}

	it.hash = b.PrevHash
	return b, nil
}

// nextForward stops at the first height with no index entry, or right after
// yielding the tip this iterator was created at.
func (it *ChainIterator) nextForward() (*block.Block, error) {
	if it.done {
		return nil, nil
	}

	b, err := it.cs.GetByHeight(it.height)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Hash == it.tipHash {
		it.done = true
	}
	if b == nil {
		return nil, nil
	}

	it.height++
	return b, nil
}

// Collect drains it into a slice.
func Collect(it *ChainIterator) ([]*block.Block, error) {
	var blocks []*block.Block
	for {
		b, err := it.Next()
		if err != nil {
			return blocks, err
		}
		if b == nil {
			return blocks, nil
		}
		blocks = append(blocks, b)
	}
}

// ForEach calls fn for every block until the walk ends or fn returns an error.
func ForEach(it *ChainIterator, fn func(*block.Block) error) error {
	for {
		b, err := it.Next()
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}
