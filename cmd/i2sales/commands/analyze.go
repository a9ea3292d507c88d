package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i2sales/insights/internal/ingest"
	"github.com/i2sales/insights/internal/metrics"
	"github.com/i2sales/insights/internal/store"
)

var analyzeSave bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Load the CSV exports and print the full analysis as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, mode, err := runAnalysis(cmd)
		if err != nil {
			return err
		}

		if analyzeSave {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			runID, err := s.SaveSnapshot(cmd.Context(), inputDir, mode.Mode, result)
			if err != nil {
				return err
			}
			log.WithField("run_id", runID).Info("snapshot saved")
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Mode   metrics.ModeInfo       `json:"mode"`
			Result metrics.AnalysisResult `json:"result"`
		}{Mode: mode, Result: result})
	},
}

// runAnalysis is the shared ingest-then-compute path of every command.
func runAnalysis(cmd *cobra.Command) (metrics.AnalysisResult, metrics.ModeInfo, error) {
	run := log.WithRun()

	bundles, diags, err := ingest.LoadDir(cmd.Context(), inputDir)
	if err != nil {
		return metrics.AnalysisResult{}, metrics.ModeInfo{}, fmt.Errorf("load %s: %w", inputDir, err)
	}
	for _, diag := range diags {
		run.WithField("code", string(diag.Code)).
			WithField("subject", diag.Subject).
			Warn(diag.Message)
	}

	mode := metrics.ResolveMode(bundles)
	analyzer := metrics.Analyzer{}
	result := analyzer.Analyze(bundles)
	result.Diagnostics = append(diags, result.Diagnostics...)

	run.WithField("agents", len(result.AgentNames)).
		WithField("mode", string(mode.Mode)).
		Info("analysis complete")
	return result, mode, nil
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the analysis as a snapshot")
	rootCmd.AddCommand(analyzeCmd)
}
