package utxo

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/store"
	"github.com/mezonai/powchain/transaction"
)

// Unspent locates one unspent output: output Index of transaction TxID.
type Unspent struct {
	TxID   string
	Index  int
	Output transaction.TXOutput
}

// Index derives unspent outputs from the full chain on every call. Nothing
// is cached between calls.
type Index struct {
	cs *store.ChainStore
}

func NewIndex(cs *store.ChainStore) *Index {
	return &Index{cs: cs}
}

// spentSet maps a transaction id to the output indices spent from it.
type spentSet map[string]map[int]struct{}

func (s spentSet) add(txid string, vout int) {
	outs, ok := s[txid]
	if !ok {
		outs = make(map[int]struct{})
		s[txid] = outs
	}
	outs[vout] = struct{}{}
}

func (s spentSet) contains(txid string, vout int) bool {
	_, ok := s[txid][vout]
	return ok
}

// spentBy is the first pass: every output referenced by a non-coinbase input
// that address unlocked, anywhere in the chain.
func (ix *Index) spentBy(address string) (spentSet, error) {
	spent := make(spentSet)
	err := store.ForEach(store.NewBackwardIterator(ix.cs), func(b *block.Block) error {
		for _, tx := range b.Transactions {
			if tx.IsCoinbase() {
				continue
			}
			for _, in := range tx.Vin {
				if in.CanUnlockOutputWith(address) {
					spent.add(in.Txid, in.Vout)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return spent, nil
}

// UnspentTransactions runs both passes: spends are collected over the whole
// chain before any output is judged, so the result does not depend on the
// order blocks are visited in.
func (ix *Index) UnspentTransactions(address string) ([]Unspent, error) {
	started := time.Now()
	defer func() { monitoring.RecordUTXOScan(time.Since(started)) }()

	spent, err := ix.spentBy(address)
	if err != nil {
		return nil, err
	}

	var unspent []Unspent
	err = store.ForEach(store.NewBackwardIterator(ix.cs), func(b *block.Block) error {
		for _, tx := range b.Transactions {
			for idx, out := range tx.Vout {
				if !out.CanBeUnlockedWith(address) || spent.contains(tx.ID, idx) {
					continue
				}
				unspent = append(unspent, Unspent{TxID: tx.ID, Index: idx, Output: out})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logx.Debug("UTXO", "Found ", len(unspent), " unspent outputs for ", address)
	return unspent, nil
}

// UnspentOutputsFor returns every output locked to address that no input
// has spent.
func (ix *Index) UnspentOutputsFor(address string) ([]transaction.TXOutput, error) {
	unspent, err := ix.UnspentTransactions(address)
	if err != nil {
		return nil, err
	}
	outputs := make([]transaction.TXOutput, 0, len(unspent))
	for _, u := range unspent {
		outputs = append(outputs, u.Output)
	}
	return outputs, nil
}

// Balance sums the unspent outputs of address.
func (ix *Index) Balance(address string) (*uint256.Int, error) {
	outputs, err := ix.UnspentOutputsFor(address)
	if err != nil {
		return nil, err
	}
	return Sum(outputs), nil
}

// Sum folds output values without overflow.
func Sum(outputs []transaction.TXOutput) *uint256.Int {
	total := new(uint256.Int)
	for _, out := range outputs {
		total.Add(total, uint256.NewInt(out.Value))
	}
	return total
}
