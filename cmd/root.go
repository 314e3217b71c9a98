package cmd

import (
	"net/http"
	"os"

	"github.com/mezonai/powchain/config"
	"github.com/mezonai/powchain/errors"
	"github.com/mezonai/powchain/exception"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
	"github.com/spf13/cobra"
)

type RootConfig struct {
	ConfigPath  string
	GenesisPath string
	DataDir     string
	Database    string
	MetricsAddr string
	LogStdout   bool
}

var rootConfig RootConfig

var rootCmd = &cobra.Command{
	Use:   "powchain",
	Short: "Single-node proof-of-work ledger",
	Long: `Command line interface for a single-node proof-of-work ledger.
Blocks are mined locally and stored in an embedded key-value database.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRoot,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfig.ConfigPath, "config", config.DefaultConfigPath, "path to node.ini")
	flags.StringVar(&rootConfig.GenesisPath, "genesis", config.DefaultGenesisPath, "path to genesis.yml")
	flags.StringVarP(&rootConfig.DataDir, "data-dir", "d", "", "database directory (overrides [store] directory)")
	flags.StringVar(&rootConfig.Database, "database", "", "database backend: leveldb, bolt, rocksdb or redis (overrides [store] type)")
	flags.StringVar(&rootConfig.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while the command runs")
	flags.BoolVar(&rootConfig.LogStdout, "log-stdout", false, "write logs to stderr instead of the log file")
}

func setupRoot(cmd *cobra.Command, args []string) error {
	if rootConfig.LogStdout {
		logx.SetOutput(cmd.ErrOrStderr())
	}
	if rootConfig.MetricsAddr != "" {
		startMetricsServer(rootConfig.MetricsAddr)
	}
	return nil
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	exception.SafeGo("metrics-server", func() {
		logx.Info("MONITORING", "Serving metrics on ", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error("MONITORING", "Metrics server stopped: ", err)
		}
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed [", errors.CodeOf(err), "]: ", err)
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
