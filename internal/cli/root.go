// Package cli wires the command surface: one-shot check-in/check-out, the
// recurring scheduler, and a configuration/credential self-test.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "zoho-attendance",
	Short: "Mark Zoho People attendance on a schedule",
	Long: `zoho-attendance marks check-in and check-out events against the Zoho
People attendance API, either once from the command line or recurring on
cron schedules. OAuth2 access tokens are refreshed and cached
transparently.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to optional YAML/JSON config file")
	rootCmd.AddCommand(checkinCmd, checkoutCmd, runCmd, testCmd)
}

// ExecuteContext runs the CLI. Command failures map to exit code 1; ctx
// cancellation (SIGINT/SIGTERM) reaches every command through cmd.Context().
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
