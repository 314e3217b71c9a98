package cmd

import (
	"fmt"

	"github.com/mezonai/powchain/transaction"
	"github.com/spf13/cobra"
)

var addBlockCmd = &cobra.Command{
	Use:   "addblock DATA",
	Short: "Mine a block carrying DATA",
	Long: `Wraps DATA in a payload transaction and mines it on top of the tip.
Examples:
  powchain addblock "hello world"
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addBlock(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(addBlockCmd)
}

func addBlock(cmd *cobra.Command, data string) error {
	tx, err := transaction.NewPayloadTX(data)
	if err != nil {
		return err
	}

	cs, _, err := openChain()
	if err != nil {
		return err
	}
	defer closeChain(cs)

	b, err := cs.Append([]*transaction.Transaction{tx})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added block %d: %s\n", b.Height, b.Hash)
	return nil
}
