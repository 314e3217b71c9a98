package store

import (
	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/logx"
)

// VerifyChain walks back from the tip and checks every block's hash and
// difficulty, that each parent sits one height below its child, that the
// height index agrees with the block heights, and that the walk ends at the
// FIRST block. The first violation is returned as ErrCorrupt.
func VerifyChain(cs *ChainStore) error {
	genesis := cs.GenesisHash()
	it := NewBackwardIterator(cs)

	var (
		child *block.Block
		count int
	)
	for {
		b, err := it.Next()
		if err != nil {
			return err
		}
		if b == nil {
			break
		}
		count++

		if !b.Validate() {
			return errors.Newf(errors.ErrCodeCorrupt, "block %s fails hash or difficulty check", b.Hash)
		}
		if child != nil {
			if b.Height+1 != child.Height {
				return errors.Newf(errors.ErrCodeCorrupt, "block %s at height %d has parent %s at height %d",
					child.Hash, child.Height, b.Hash, b.Height)
			}
			indexed, err := cs.provider.Get(heightKey(b.Height))
			if err != nil {
				return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "cannot read height index %d", b.Height)
			}
			if string(indexed) != child.Hash {
				return errors.Newf(errors.ErrCodeCorrupt, "height index %d points at %q, want %s",
					b.Height, string(indexed), child.Hash)
			}
		}
		child = b
	}

	if child == nil {
		return errors.Newf(errors.ErrCodeCorrupt, "tip %s is not stored", cs.TipHash())
	}
	if child.PrevHash != "" {
		return errors.Newf(errors.ErrCodeCorrupt, "walk stopped at %s whose parent %s is missing", child.Hash, child.PrevHash)
	}
	if child.Hash != genesis || child.Height != 0 {
		return errors.Newf(errors.ErrCodeCorrupt, "walk ended at %s, but %s is %s", child.Hash, KeyFirst, genesis)
	}

	logx.Info("VERIFY", "Chain verified: ", count, " blocks")
	return nil
}
