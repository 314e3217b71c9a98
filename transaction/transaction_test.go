package transaction

import (
	"strings"
	"testing"

	"github.com/mezonai/powchain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoinbaseTX(t *testing.T) {
	tests := []struct {
		name       string
		to         string
		data       string
		wantErr    bool
		wantPrefix string
	}{
		{name: "recipient and data", to: "alice", data: "genesis", wantPrefix: "genesis ("},
		{name: "recipient only", to: "alice", wantPrefix: "Reward to 'alice' ("},
		{name: "data only", data: "payload", wantPrefix: "payload ("},
		{name: "neither", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewCoinbaseTX(tt.to, tt.data, DefaultReward)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidTransaction))
				return
			}
			require.NoError(t, err)
			assert.True(t, tx.IsCoinbase())
			assert.NotEmpty(t, tx.ID)
			assert.True(t, strings.HasPrefix(tx.Vin[0].ScriptSig, tt.wantPrefix), tx.Vin[0].ScriptSig)
			if tt.to == "" {
				assert.Empty(t, tx.Vout)
				return
			}
			require.Len(t, tx.Vout, 1)
			assert.Equal(t, DefaultReward, tx.Vout[0].Value)
			assert.Equal(t, tt.to, tx.Vout[0].ScriptPubKey)
		})
	}
}

func TestCoinbaseRewardsToSameAddressHaveDistinctIDs(t *testing.T) {
	for _, data := range []string{"", "block reward"} {
		a, err := NewCoinbaseTX("alice", data, DefaultReward)
		require.NoError(t, err)
		b, err := NewCoinbaseTX("alice", data, DefaultReward)
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID, "data %q", data)
	}
}

func TestHashIgnoresIDAndTracksContent(t *testing.T) {
	tx, err := NewCoinbaseTX("bob", "fixed", 50)
	require.NoError(t, err)

	id := tx.ID
	tx.ID = "something else"
	again, err := tx.Hash()
	require.NoError(t, err)
	assert.Equal(t, id, again)

	tx.Vout[0].Value = 51
	changed, err := tx.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, id, changed)
}

func TestIsCoinbase(t *testing.T) {
	spend := &Transaction{
		Vin:  []TXInput{{Txid: "abc", Vout: 0, ScriptSig: "alice"}},
		Vout: []TXOutput{{Value: 10, ScriptPubKey: "bob"}},
	}
	assert.False(t, spend.IsCoinbase())

	twoInputs := &Transaction{
		Vin: []TXInput{{Vout: CoinbaseVout}, {Vout: CoinbaseVout}},
	}
	assert.False(t, twoInputs.IsCoinbase())

	wrongIndex := &Transaction{Vin: []TXInput{{Vout: 0}}}
	assert.False(t, wrongIndex.IsCoinbase())
}

func TestLockPredicatesAreStringEquality(t *testing.T) {
	in := TXInput{Txid: "t", Vout: 0, ScriptSig: "alice"}
	out := TXOutput{Value: 1, ScriptPubKey: "alice"}

	assert.True(t, in.CanUnlockOutputWith("alice"))
	assert.False(t, in.CanUnlockOutputWith("Alice"))
	assert.True(t, out.CanBeUnlockedWith("alice"))
	assert.False(t, out.CanBeUnlockedWith("bob"))
}

func TestNewPayloadTX(t *testing.T) {
	tx, err := NewPayloadTX("hello")
	require.NoError(t, err)
	assert.True(t, tx.IsCoinbase())
	assert.True(t, strings.HasPrefix(tx.Vin[0].ScriptSig, "hello ("))
	assert.Empty(t, tx.Vout)

	again, err := NewPayloadTX("hello")
	require.NoError(t, err)
	assert.NotEqual(t, tx.ID, again.ID)

	_, err = NewPayloadTX("")
	assert.True(t, errors.Is(err, errors.ErrInvalidTransaction))
}
