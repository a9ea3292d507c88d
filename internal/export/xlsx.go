// Package export writes an analysis result to an Excel workbook, one
// sheet per concern, for managers who live in spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/i2sales/insights/internal/metrics"
)

const (
	sheetKpis     = "KPIs"
	sheetFunnel   = "Funil"
	sheetRankings = "Rankings"
	sheetTemporal = "Evolução Diária"
)

// WriteWorkbook renders the result into an xlsx file at path.
func WriteWorkbook(path string, result metrics.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeKpiSheet(f, result); err != nil {
		return err
	}
	if err := writeFunnelSheet(f, result.TeamMetrics.ConsolidatedFunnel); err != nil {
		return err
	}
	if err := writeRankingSheet(f, result.TeamMetrics); err != nil {
		return err
	}
	if err := writeTemporalSheet(f, result.TeamMetrics.TeamTemporalData); err != nil {
		return err
	}

	// The default sheet is replaced by the first real one.
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
	}
	return nil
}

func writeKpiSheet(f *excelize.File, result metrics.AnalysisResult) error {
	if _, err := f.NewSheet(sheetKpis); err != nil {
		return fmt.Errorf("create kpi sheet: %w", err)
	}
	if err := setRow(f, sheetKpis, 1, []any{"Corretor", "Indicador", "Valor"}); err != nil {
		return err
	}
	row := 2
	for _, agent := range result.AgentNames {
		individual, ok := result.IndividualMetrics[agent]
		if !ok {
			continue
		}
		for _, kpi := range individual.Kpis {
			if err := setRow(f, sheetKpis, row, []any{agent, kpi.Label, kpi.Value}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeFunnelSheet(f *excelize.File, funnel []metrics.FunnelStage) error {
	if _, err := f.NewSheet(sheetFunnel); err != nil {
		return fmt.Errorf("create funnel sheet: %w", err)
	}
	if err := setRow(f, sheetFunnel, 1, []any{"Etapa", "Valor", "Conversão (%)"}); err != nil {
		return err
	}
	for i, stage := range funnel {
		conversion := any("")
		if stage.ConversionRate != nil {
			conversion = *stage.ConversionRate
		}
		if err := setRow(f, sheetFunnel, i+2, []any{stage.Name, stage.Value, conversion}); err != nil {
			return err
		}
	}
	return nil
}

func writeRankingSheet(f *excelize.File, team metrics.TeamMetrics) error {
	if _, err := f.NewSheet(sheetRankings); err != nil {
		return fmt.Errorf("create ranking sheet: %w", err)
	}
	if err := setRow(f, sheetRankings, 1, []any{"Ranking", "Posição", "Corretor", "Valor"}); err != nil {
		return err
	}
	row := 2
	sections := []struct {
		name  string
		items []metrics.RankingItem
	}{
		{name: "Vendas", items: team.SalesRanking},
		{name: "Ligações", items: team.CallsRanking},
		{name: "Documentações", items: team.DocsRanking},
		{name: "Follow-ups", items: team.FollowUpsRanking},
	}
	for _, section := range sections {
		for position, item := range section.items {
			if err := setRow(f, sheetRankings, row, []any{section.name, position + 1, item.Name, item.Value}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeTemporalSheet(f *excelize.File, points []metrics.TemporalPoint) error {
	if _, err := f.NewSheet(sheetTemporal); err != nil {
		return fmt.Errorf("create temporal sheet: %w", err)
	}
	if err := setRow(f, sheetTemporal, 1, []any{"Data", "Ligações"}); err != nil {
		return err
	}
	for i, point := range points {
		if err := setRow(f, sheetTemporal, i+2, []any{point.Date, point.Calls}); err != nil {
			return err
		}
	}
	return nil
}
