package cmd

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"relimport.dev/pkg/relimport/internal/controller"
	m "relimport.dev/pkg/relimport/internal/model"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <file>",
		Short: "Show a run report written with rewrite --report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := reportStore.LoadReport(m.Path(args[0]))
			if err != nil {
				return err
			}

			cmd.Printf("Generated:        %s (%s)\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"), humanize.Time(report.GeneratedAt))
			cmd.Printf("Mode:             %s\n", report.Mode)
			cmd.Printf("Scope:            %s\n", report.Scope)
			cmd.Printf("Source directory: %s\n", report.SourceDir)
			cmd.Printf("Packages:         %s\n", strings.Join(report.Packages, ", "))

			if len(report.Summary.Modified) > 0 {
				cmd.Println("\nModified files:")

				for _, path := range report.Summary.Modified {
					cmd.Printf("  %s\n", path)
				}
			}

			controller.NewSimpleUI(cmd).DisplaySummary(cmd.Context(), report.Summary)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newReportCmd())
}
