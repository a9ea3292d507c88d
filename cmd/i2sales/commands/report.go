package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i2sales/insights/internal/export"
	"github.com/i2sales/insights/internal/metrics"
	"github.com/i2sales/insights/internal/report"
	"github.com/i2sales/insights/internal/store"
)

var (
	reportOutput string
	reportLatest bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the analysis as a markdown report",
	Long: `Renders the analysis as markdown. By default the CSV exports are
re-analyzed; with --latest the most recent stored snapshot is rendered
instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			result metrics.AnalysisResult
			mode   metrics.ModeInfo
			err    error
		)
		if reportLatest {
			result, mode, err = latestSnapshot(cmd)
		} else {
			result, mode, err = runAnalysis(cmd)
		}
		if err != nil {
			return err
		}

		markdown := report.BuildMarkdown(result, mode)
		if reportOutput == "" {
			fmt.Print(markdown)
			return nil
		}
		if err := os.WriteFile(reportOutput, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.WithField("path", reportOutput).Info("report written")
		return nil
	},
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the analysis to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, _, err := runAnalysis(cmd)
		if err != nil {
			return err
		}
		if err := export.WriteWorkbook(exportOutput, result); err != nil {
			return err
		}
		log.WithField("path", exportOutput).Info("workbook written")
		return nil
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored analysis snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()

		snapshots, err := s.ListSnapshots(cmd.Context())
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("no snapshots stored")
			return nil
		}
		for _, snapshot := range snapshots {
			fmt.Printf("%s  %s  %-22s  %d agent(s)  %s\n",
				snapshot.RunID,
				snapshot.CreatedAt.Format("2006-01-02 15:04:05"),
				snapshot.Mode,
				snapshot.AgentCount,
				snapshot.SourceDir,
			)
		}
		return nil
	},
}

// latestSnapshot rehydrates the most recent stored analysis.
func latestSnapshot(cmd *cobra.Command) (metrics.AnalysisResult, metrics.ModeInfo, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return metrics.AnalysisResult{}, metrics.ModeInfo{}, err
	}
	defer s.Close()

	snapshot, err := s.LoadLatest(cmd.Context())
	if err != nil {
		return metrics.AnalysisResult{}, metrics.ModeInfo{}, err
	}
	agent := ""
	if len(snapshot.Result.AgentNames) == 1 {
		agent = snapshot.Result.AgentNames[0]
	}
	log.WithField("run_id", snapshot.RunID).Info("rendering stored snapshot")
	return *snapshot.Result, metrics.ModeInfoFor(snapshot.Mode, agent), nil
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().BoolVar(&reportLatest, "latest", false, "render the most recent stored snapshot")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "out/analysis.xlsx", "path of the workbook")
	rootCmd.AddCommand(reportCmd, exportCmd, snapshotsCmd)
}
