package utxo

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/stringutil"
	"github.com/mezonai/powchain/transaction"
)

// FindSpendableOutputs collects unspent outputs of address until their total
// reaches amount. It returns the total found and the chosen output indices
// per transaction id. A total below amount is not an error here.
func (ix *Index) FindSpendableOutputs(address string, amount uint64) (*uint256.Int, map[string][]int, error) {
	unspent, err := ix.UnspentTransactions(address)
	if err != nil {
		return nil, nil, err
	}

	target := uint256.NewInt(amount)
	accumulated := new(uint256.Int)
	chosen := make(map[string][]int)
	for _, u := range unspent {
		if !accumulated.Lt(target) {
			break
		}
		accumulated.Add(accumulated, uint256.NewInt(u.Output.Value))
		chosen[u.TxID] = append(chosen[u.TxID], u.Index)
	}
	return accumulated, chosen, nil
}

// NewUTXOTransaction moves amount from one address to another, spending
// outputs of from and returning any change to from.
func NewUTXOTransaction(from, to string, amount uint64, ix *Index) (*transaction.Transaction, error) {
	if from == "" || to == "" {
		return nil, errors.NewError(errors.ErrCodeInvalidTransaction, "sender and recipient are required")
	}
	if amount == 0 {
		return nil, errors.NewError(errors.ErrCodeInvalidTransaction, "amount must be positive")
	}

	accumulated, chosen, err := ix.FindSpendableOutputs(from, amount)
	if err != nil {
		return nil, err
	}
	target := uint256.NewInt(amount)
	if accumulated.Lt(target) {
		return nil, errors.Newf(errors.ErrCodeInsufficientFunds, "%s has %s, needs %d", from, accumulated.Dec(), amount)
	}

	txids := make([]string, 0, len(chosen))
	for txid := range chosen {
		txids = append(txids, txid)
	}
	sort.Strings(txids)

	var inputs []transaction.TXInput
	for _, txid := range txids {
		for _, idx := range chosen[txid] {
			inputs = append(inputs, transaction.TXInput{Txid: txid, Vout: idx, ScriptSig: from})
		}
	}

	outputs := []transaction.TXOutput{{Value: amount, ScriptPubKey: to}}
	// change is below the last output value consumed, so it fits in uint64
	change := new(uint256.Int).Sub(accumulated, target)
	if !change.IsZero() {
		outputs = append(outputs, transaction.TXOutput{Value: change.Uint64(), ScriptPubKey: from})
	}

	tx := &transaction.Transaction{Vin: inputs, Vout: outputs}
	if err := tx.SetID(); err != nil {
		return nil, err
	}

	logx.Info("UTXO", "Built transfer ", stringutil.ShortHash(tx.ID), ": ", amount, " from ", from, " to ", to, " with ", len(inputs), " inputs")
	return tx, nil
}
