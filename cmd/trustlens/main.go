// cmd/trustlens/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trustlens/internal/platform/config"

	// Analyzers incluidos, registrados vía init()
	_ "trustlens/internal/analyzers/bias"
	_ "trustlens/internal/analyzers/credibility"
	_ "trustlens/internal/analyzers/factcheck"
	_ "trustlens/internal/analyzers/manipulation"
	_ "trustlens/internal/analyzers/sourcing"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Códigos de salida
const (
	exitRunError    = 1
	exitConfigError = 2
)

var rootCmd = &cobra.Command{
	Use:   "trustlens",
	Short: "Score the trustworthiness of articles and transcripts",
	Long: `TrustLens runs a set of independent analyzers (source credibility, sourcing,
bias, manipulation, fact checking) over a piece of content and combines their
scores into a single 0-100 trust score.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError asocia un código de salida a un error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configError(err error) error {
	return &exitError{code: exitConfigError, err: err}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitRunError
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config.PrintVersion(cmd.OutOrStdout(), version, commit, date)
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(versionCmd)
}
