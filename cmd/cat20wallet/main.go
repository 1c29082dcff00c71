package main

import (
	"fmt"
	"os"

	"cat20_wallet/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cat20wallet",
		Short:         "CAT20 token wallet service and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default $CONFIG_PATH or config/config.yml)")

	root.AddCommand(
		newServeCmd(),
		newTokenCmd(),
		newBalanceCmd(),
		newUtxosCmd(),
		newSendCmd(),
		newAmountCmd(),
	)
	return root
}

func main() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
