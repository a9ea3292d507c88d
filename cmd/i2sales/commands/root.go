// Package commands wires the CLI surface: analyze, report, insights,
// export and snapshot management over one shared configuration.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/i2sales/insights/internal/logger"
)

var (
	// Version and Commit are set at build time via ldflags.
	Version = "dev"
	Commit  = "none"

	inputDir string
	dbPath   string

	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "i2sales",
	Short: "i2sales analyzes sales agent productivity exports",
	Long: `i2sales ingests productivity and client roster CSV exports, derives
KPIs, sales funnels, rankings and period comparisons, and can render
reports, spreadsheets and AI-generated commentary on top of them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load() // loads .env
		log = logger.New()

		log.WithField("version", Version).
			WithField("commit", Commit).
			Debug("i2sales starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputDir, "input", "i", ".", "directory containing the CSV exports")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "out/i2sales.db", "path of the snapshot database")
}
