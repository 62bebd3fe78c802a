package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "magic",
	Short: "Magic Formula stock screener",
	Long: `Magic Formula stock screener

Ranks a sector's stocks by earnings yield and return on capital,
sizes positions against a budget and writes recommendation narratives.

Usage:
  go run ./cmd/magic [command]

Examples:
  go run ./cmd/magic api
  go run ./cmd/magic screen --sector Technology --amount 10000
  go run ./cmd/magic recommend --sector Healthcare --amount 25000
  go run ./cmd/magic scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the running command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
