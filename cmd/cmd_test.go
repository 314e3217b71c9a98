package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/jsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	dir string
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()
	return &testNode{dir: t.TempDir()}
}

// run executes the root command against the node's directory. Flags keep
// their values between executions, so every flag a test relies on is passed.
func (n *testNode) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)

	base := []string{
		"--config", filepath.Join(n.dir, "missing.ini"),
		"--genesis", filepath.Join(n.dir, "missing.yml"),
		"--data-dir", filepath.Join(n.dir, "blocks"),
		"--database", "leveldb",
		"--log-stdout",
	}
	rootCmd.SetArgs(append(args, base...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAddBlockAndPrintChain(t *testing.T) {
	n := newTestNode(t)

	out, err := n.run(t, "addblock", "first payload")
	require.NoError(t, err)
	assert.Contains(t, out, "Added block 1")

	_, err = n.run(t, "addblock", "second payload")
	require.NoError(t, err)

	out, err = n.run(t, "printchain", "--forward=false", "--json=false")
	require.NoError(t, err)
	first := strings.Index(out, "Block 2")
	last := strings.Index(out, "Block 0")
	require.True(t, first >= 0 && last >= 0)
	assert.Less(t, first, last)
	assert.Contains(t, out, `"second payload (`)
	assert.NotContains(t, out, "PoW: false")

	out, err = n.run(t, "printchain", "--forward=true", "--json=false")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Block 0"), strings.Index(out, "Block 2"))

	out, err = n.run(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Chain OK: 3 blocks")
}

func TestPrintChainJSON(t *testing.T) {
	n := newTestNode(t)
	_, err := n.run(t, "addblock", "json me")
	require.NoError(t, err)

	out, err := n.run(t, "printchain", "--forward=true", "--json=true")
	require.NoError(t, err)

	docs := strings.Split(strings.TrimSpace(out), "\n}\n")
	require.Len(t, docs, 2)

	var genesis block.Block
	require.NoError(t, jsonx.Unmarshal([]byte(docs[0]+"\n}"), &genesis))
	assert.Equal(t, uint64(0), genesis.Height)
	assert.True(t, genesis.Validate())
}

func TestSendAndGetBalance(t *testing.T) {
	n := newTestNode(t)

	out, err := n.run(t, "getbalance", "--address", "genesis")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance of 'genesis': 100")

	_, err = n.run(t, "send", "--from", "genesis", "--to", "alice", "--amount", "30", "--reward-to", "miner")
	require.NoError(t, err)

	for address, want := range map[string]string{"genesis": "70", "alice": "30", "miner": "100"} {
		out, err := n.run(t, "getbalance", "--address", address)
		require.NoError(t, err)
		assert.Contains(t, out, "': "+want+"\n", address)
	}

	_, err = n.run(t, "send", "--from", "alice", "--to", "bob", "--amount", "31", "--reward-to", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient_funds")
}

func TestGetBalanceRejectsEmptyAddress(t *testing.T) {
	n := newTestNode(t)
	_, err := n.run(t, "addblock", "no outputs here")
	require.NoError(t, err)

	_, err = n.run(t, "getbalance", "--address", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_config")
}

func TestUnknownDatabaseIsRejected(t *testing.T) {
	n := newTestNode(t)
	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"verify",
		"--config", filepath.Join(n.dir, "missing.ini"),
		"--genesis", filepath.Join(n.dir, "missing.yml"),
		"--data-dir", n.dir,
		"--database", "sqlite",
		"--log-stdout",
	})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_config")
}
