package cmd

import (
	"fmt"

	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/utxo"
	"github.com/spf13/cobra"
)

var balanceAddress string

var getBalanceCmd = &cobra.Command{
	Use:   "getbalance --address ADDRESS",
	Short: "Sum the unspent outputs of an address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if balanceAddress == "" {
			return errors.NewError(errors.ErrCodeInvalidConfig, "address must not be empty")
		}

		cs, _, err := openChain()
		if err != nil {
			return err
		}
		defer closeChain(cs)

		balance, err := utxo.NewIndex(cs).Balance(balanceAddress)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Balance of '%s': %s\n", balanceAddress, balance.Dec())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getBalanceCmd)
	getBalanceCmd.Flags().StringVarP(&balanceAddress, "address", "a", "", "address to query")
	_ = getBalanceCmd.MarkFlagRequired("address")
}
