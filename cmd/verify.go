package cmd

import (
	"fmt"

	"github.com/mezonai/powchain/store"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every block's proof-of-work and links",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, _, err := openChain()
		if err != nil {
			return err
		}
		defer closeChain(cs)

		if err := store.VerifyChain(cs); err != nil {
			return err
		}
		tip, err := cs.GetTip()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Chain OK: %d blocks, tip %s\n", tip.Height+1, tip.Hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
