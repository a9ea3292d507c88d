// Package report renders an analysis result as a markdown document for
// sharing outside the tool.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/i2sales/insights/internal/metrics"
)

// BuildMarkdown renders the full analysis: mode header, team block when
// more than one agent is present, then one section per agent.
func BuildMarkdown(result metrics.AnalysisResult, mode metrics.ModeInfo) string {
	var b strings.Builder
	b.WriteString("# " + mode.Title + "\n\n")
	b.WriteString(mode.Description + "\n\n")

	if len(result.AgentNames) > 1 {
		writeTeamSection(&b, result.TeamMetrics)
	}

	for _, agent := range result.AgentNames {
		individual, ok := result.IndividualMetrics[agent]
		if !ok {
			b.WriteString(fmt.Sprintf("## %s\n\n_Sem métricas disponíveis._\n\n", agent))
			continue
		}
		writeIndividualSection(&b, agent, individual)
	}

	if len(result.Diagnostics) > 0 {
		b.WriteString("## Diagnósticos\n")
		for _, diag := range result.Diagnostics {
			b.WriteString(fmt.Sprintf("- `%s` %s: %s\n", diag.Code, diag.Subject, diag.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeTeamSection(b *strings.Builder, team metrics.TeamMetrics) {
	b.WriteString("## Equipe\n\n")

	b.WriteString("### Funil Consolidado\n")
	writeFunnel(b, team.ConsolidatedFunnel)

	rankings := []struct {
		name  string
		items []metrics.RankingItem
	}{
		{name: "Vendas", items: team.SalesRanking},
		{name: "Ligações", items: team.CallsRanking},
		{name: "Documentações", items: team.DocsRanking},
		{name: "Follow-ups Realizados", items: team.FollowUpsRanking},
	}
	for _, ranking := range rankings {
		if len(ranking.items) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("### Ranking de %s\n", ranking.name))
		for position, item := range ranking.items {
			b.WriteString(fmt.Sprintf("%d. %s: `%.0f`\n", position+1, item.Name, item.Value))
		}
		b.WriteString("\n")
	}

	if team.IsComparative && team.Comparison != nil {
		writeComparison(b, team.Comparison)
	}
}

func writeIndividualSection(b *strings.Builder, agent string, individual metrics.IndividualMetrics) {
	b.WriteString(fmt.Sprintf("## %s\n\n", agent))

	b.WriteString("### KPIs\n")
	for _, kpi := range individual.Kpis {
		b.WriteString(fmt.Sprintf("- %s: `%s`\n", kpi.Label, kpi.Value))
	}
	b.WriteString("\n")

	b.WriteString("### Funil\n")
	writeFunnel(b, individual.Funnel)

	if individual.IsComparative && individual.Comparison != nil {
		writeComparison(b, individual.Comparison)
	}
}

func writeFunnel(b *strings.Builder, funnel []metrics.FunnelStage) {
	for _, stage := range funnel {
		if stage.ConversionRate != nil {
			b.WriteString(fmt.Sprintf("- %s: `%d` (%.1f%%)\n", stage.Name, stage.Value, *stage.ConversionRate))
		} else {
			b.WriteString(fmt.Sprintf("- %s: `%d`\n", stage.Name, stage.Value))
		}
	}
	b.WriteString("\n")
}

func writeComparison(b *strings.Builder, comparison *metrics.PeriodComparison) {
	b.WriteString(fmt.Sprintf("### Comparativo (%s vs %s)\n", comparison.CurrentPeriod, comparison.PreviousPeriod))
	for _, kpi := range comparison.ComparativeKpis {
		b.WriteString(fmt.Sprintf("- %s: `%s` antes `%s` (%s)\n",
			kpi.Label, kpi.CurrentValue, kpi.PreviousValue, formatChange(kpi.ChangePercentage)))
	}
	b.WriteString("\n")
}

func formatChange(change float64) string {
	if math.IsInf(change, 1) {
		return "Novo"
	}
	return fmt.Sprintf("%+.1f%%", change)
}
