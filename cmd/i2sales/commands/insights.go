package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i2sales/insights/internal/insight"
)

var insightsAgent string

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate AI commentary over the analysis",
	Long: `Builds the analysis, assembles the matching prompt (team or
individual, depending on the loaded data and the --agent flag) and asks
the configured model for managerial commentary in markdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, mode, err := runAnalysis(cmd)
		if err != nil {
			return err
		}

		resolved := mode.Mode
		if insightsAgent != "" {
			resolved = insight.IndividualModeFor(mode.Mode)
		}
		prompt, err := insight.BuildPrompt(result, resolved, insightsAgent)
		if err != nil {
			return err
		}

		client := insight.NewClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"), nil, log)
		text, err := client.GenerateInsights(cmd.Context(), prompt)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	insightsCmd.Flags().StringVarP(&insightsAgent, "agent", "a", "", "generate insights for one agent instead of the team")
	rootCmd.AddCommand(insightsCmd)
}
