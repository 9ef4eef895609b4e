package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Inspect and maintain the current-version whitelist",
}

var versionsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted version configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		vc := a.versions.Info(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "current:  %s\n", joinOrNone(vc.CurrentVersions))
		fmt.Fprintf(out, "history:  %s\n", joinOrNone(vc.VersionHistory))
		fmt.Fprintf(out, "auto:     %t (max %d)\n", vc.AutoDetect, vc.MaxVersions)
		if !vc.LastUpdated.IsZero() {
			fmt.Fprintf(out, "updated:  %s\n", vc.LastUpdated.Format("2006-01-02 15:04:05Z07:00"))
		}
		return nil
	},
}

var versionsDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect new and obsolete versions from the TeamCity catalog",
	Long: `Compares the top-level projects matching TCPANEL_VERSION_MARKER with
the persisted whitelist. When auto-detect is enabled the whitelist is
updated and saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.dashboard.DetectVersions(cmd.Context())
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	versionsCmd.AddCommand(versionsShowCmd, versionsDetectCmd)
}

func printReport(w io.Writer, report model.VersionReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "new:       %s\n", joinOrNone(report.NewVersions))
	fmt.Fprintf(&b, "obsolete:  %s\n", joinOrNone(report.ObsoleteVersions))
	fmt.Fprintf(&b, "current:   %s\n", joinOrNone(report.CurrentVersions))
	fmt.Fprintf(&b, "saved:     %t\n", report.AutoUpdated)
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
