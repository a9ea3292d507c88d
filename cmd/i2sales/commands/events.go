package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i2sales/insights/internal/events"
	"github.com/i2sales/insights/internal/ingest"
	"github.com/i2sales/insights/internal/metrics"
)

var (
	eventsAgent string
	eventsFrom  string
	eventsTo    string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Run the event-driven analysis over a client timeline",
	Long: `Reconstructs the activity stream from the client roster
attachments and aggregates it day by day inside the requested range.
Unlike the period analysis, sales here are signed: a deal reopened
inside the range subtracts what it previously added.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := time.ParseInLocation("2006-01-02", eventsFrom, time.Local)
		if err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
		to, err := time.ParseInLocation("2006-01-02", eventsTo, time.Local)
		if err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}

		bundles, diags, err := ingest.LoadDir(cmd.Context(), inputDir)
		if err != nil {
			return fmt.Errorf("load %s: %w", inputDir, err)
		}

		analyses := map[string]metrics.EventAnalysis{}
		for _, bundle := range bundles {
			if eventsAgent != "" && bundle.Name != eventsAgent {
				continue
			}
			reconstructed, eventDiags := events.Reconstruct(bundle.Clients)
			diags = append(diags, eventDiags...)
			analyses[bundle.Name] = metrics.AnalyzeEvents(reconstructed, from, to)
		}
		if eventsAgent != "" && len(analyses) == 0 {
			return fmt.Errorf("agent %q not found in %s", eventsAgent, inputDir)
		}

		for _, diag := range diags {
			log.WithField("code", string(diag.Code)).
				WithField("subject", diag.Subject).
				Warn(diag.Message)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(analyses)
	},
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsAgent, "agent", "a", "", "restrict the analysis to one agent")
	eventsCmd.Flags().StringVar(&eventsFrom, "from", "", "range start (yyyy-mm-dd)")
	eventsCmd.Flags().StringVar(&eventsTo, "to", "", "range end (yyyy-mm-dd)")
	_ = eventsCmd.MarkFlagRequired("from")
	_ = eventsCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(eventsCmd)
}
