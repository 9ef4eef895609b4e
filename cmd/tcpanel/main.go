// Package main provides the tcpanel command: the dashboard server plus
// one-shot tree and version commands against the same configuration.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/tcpanel/internal/config"
)

var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tcpanel",
	Short: "tcpanel - a TeamCity build monitoring dashboard",
	Long: `tcpanel mirrors a TeamCity server's build configurations into a
project tree, lets users pick the builds they care about, and serves a
dashboard of their latest status.

Configuration is read from TCPANEL_* environment variables. Set
TCPANEL_DEMO=true to run against built-in fixture data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, treeCmd, versionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}
