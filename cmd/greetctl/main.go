// Package main implements greetctl, the operator CLI of greetcards. It
// classifies media URLs, validates greeting documents, runs migrations,
// reports database and cache contents and inspects upload records without
// starting the server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	timeout time.Duration

	logger = zap.NewNop()
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "greetctl",
		Short:         "greetctl - greetcards operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	root.AddCommand(
		newResolveCmd(),
		newCheckCmd(),
		newValidateCmd(),
		newSlugCmd(),
		newQRCmd(),
		newMigrateCmd(),
		newStatusCmd(),
		newCacheCmd(),
		newMediaCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
