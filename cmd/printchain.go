package cmd

import (
	"fmt"
	"io"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/jsonx"
	"github.com/mezonai/powchain/store"
	"github.com/spf13/cobra"
)

type PrintChainConfig struct {
	Forward bool
	JSON    bool
}

var printChainConfig PrintChainConfig

var printChainCmd = &cobra.Command{
	Use:   "printchain",
	Short: "Print every block, newest first",
	Long: `Walks the chain from the tip back to genesis, or from genesis forward.
Examples:
  powchain printchain
  powchain printchain --forward --json
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printChain(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(printChainCmd)
	printChainCmd.Flags().BoolVar(&printChainConfig.Forward, "forward", false, "print from genesis to tip")
	printChainCmd.Flags().BoolVar(&printChainConfig.JSON, "json", false, "print each block as JSON")
}

func printChain(w io.Writer) error {
	cs, _, err := openChain()
	if err != nil {
		return err
	}
	defer closeChain(cs)

	it := store.NewBackwardIterator(cs)
	if printChainConfig.Forward {
		it = store.NewForwardIterator(cs)
	}

	return store.ForEach(it, func(b *block.Block) error {
		if printChainConfig.JSON {
			return jsonx.WriteIndented(w, b)
		}
		return writeBlock(w, b)
	})
}

func writeBlock(w io.Writer, b *block.Block) error {
	_, err := fmt.Fprintf(w, "============ Block %d ============\nHash: %s\nPrev: %s\nTimestamp: %d\nNonce: %d\nDifficulty: %d\nPoW: %t\n",
		b.Height, b.Hash, b.PrevHash, b.Timestamp, b.Nonce, b.Difficulty, b.Validate())
	if err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if _, err := fmt.Fprintf(w, "  tx %s\n", tx.ID); err != nil {
			return err
		}
		for _, in := range tx.Vin {
			if _, err := fmt.Fprintf(w, "    in  %s:%d %q\n", in.Txid, in.Vout, in.ScriptSig); err != nil {
				return err
			}
		}
		for i, out := range tx.Vout {
			if _, err := fmt.Fprintf(w, "    out %d: %d -> %q\n", i, out.Value, out.ScriptPubKey); err != nil {
				return err
			}
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}
