package cmd

import (
	"fmt"

	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/transaction"
	"github.com/mezonai/powchain/utxo"
	"github.com/spf13/cobra"
)

type SendConfig struct {
	From     string
	To       string
	Amount   uint64
	RewardTo string
}

var sendConfig SendConfig

var sendCmd = &cobra.Command{
	Use:   "send [flags]",
	Short: "Transfer value between addresses in a new block",
	Long: `Spends unspent outputs of --from, pays --amount to --to and returns the
change to --from. With --reward-to the block also carries a coinbase paying
the configured block reward.
Examples:
  powchain send --from genesis --to alice --amount 30
  powchain send --from alice --to bob --amount 5 --reward-to alice
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return send(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendConfig.From, "from", "f", "", "sending address")
	sendCmd.Flags().StringVarP(&sendConfig.To, "to", "t", "", "receiving address")
	sendCmd.Flags().Uint64VarP(&sendConfig.Amount, "amount", "a", 0, "amount to send")
	sendCmd.Flags().StringVar(&sendConfig.RewardTo, "reward-to", "", "address paid the block reward")
	_ = sendCmd.MarkFlagRequired("from")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
}

func send(cmd *cobra.Command) error {
	cs, cfg, err := openChain()
	if err != nil {
		return err
	}
	defer closeChain(cs)

	tx, err := utxo.NewUTXOTransaction(sendConfig.From, sendConfig.To, sendConfig.Amount, utxo.NewIndex(cs))
	if err != nil {
		return err
	}
	txs := []*transaction.Transaction{tx}

	if sendConfig.RewardTo != "" {
		reward, err := transaction.NewCoinbaseTX(sendConfig.RewardTo, "", cfg.Mining.BlockReward)
		if err != nil {
			return err
		}
		txs = append([]*transaction.Transaction{reward}, txs...)
	}

	b, err := cs.Append(txs)
	if err != nil {
		return err
	}
	logx.Info("SEND", "Transfer ", tx.ID, " mined in block ", b.Height)
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d from '%s' to '%s' in block %d: %s\n",
		sendConfig.Amount, sendConfig.From, sendConfig.To, b.Height, b.Hash)
	return nil
}
