// Package metrics derives the analytical model consumed by the
// presentation layer: KPIs, funnel stages, time series, rankings and
// period-over-period comparisons. Everything here is a pure function of
// its inputs; results are recomputed in full on every call.
package metrics

import (
	"encoding/json"
	"math"

	"github.com/i2sales/insights/internal/domain"
)

// Kpi is a labeled, pre-formatted headline value.
type Kpi struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// KpiComparison pairs a current value with the previous period's and a
// signed percentage change. Change is +Inf ("New") when the previous
// value was zero and the current one is not.
type KpiComparison struct {
	Label            string  `json:"label"`
	CurrentValue     string  `json:"currentValue"`
	PreviousValue    string  `json:"previousValue"`
	ChangePercentage float64 `json:"-"`
}

// MarshalJSON renders an infinite change as isNew instead of a number,
// since JSON has no representation for +Inf.
func (k KpiComparison) MarshalJSON() ([]byte, error) {
	type payload struct {
		Label            string   `json:"label"`
		CurrentValue     string   `json:"currentValue"`
		PreviousValue    string   `json:"previousValue"`
		ChangePercentage *float64 `json:"changePercentage"`
		IsNew            bool     `json:"isNew,omitempty"`
	}
	p := payload{Label: k.Label, CurrentValue: k.CurrentValue, PreviousValue: k.PreviousValue}
	if math.IsInf(k.ChangePercentage, 1) {
		p.IsNew = true
	} else {
		change := k.ChangePercentage
		p.ChangePercentage = &change
	}
	return json.Marshal(p)
}

// UnmarshalJSON restores the +Inf sentinel from the isNew flag so a
// stored result round-trips.
func (k *KpiComparison) UnmarshalJSON(data []byte) error {
	var p struct {
		Label            string   `json:"label"`
		CurrentValue     string   `json:"currentValue"`
		PreviousValue    string   `json:"previousValue"`
		ChangePercentage *float64 `json:"changePercentage"`
		IsNew            bool     `json:"isNew"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	k.Label = p.Label
	k.CurrentValue = p.CurrentValue
	k.PreviousValue = p.PreviousValue
	if p.IsNew {
		k.ChangePercentage = math.Inf(1)
	} else if p.ChangePercentage != nil {
		k.ChangePercentage = *p.ChangePercentage
	}
	return nil
}

// FunnelStage is one step of the Calls→Contact→Deal→Documentation→Sale
// pipeline. ConversionRate is relative to the immediately preceding
// stage and nil on the first stage.
type FunnelStage struct {
	Name           string   `json:"name"`
	Value          int      `json:"value"`
	ConversionRate *float64 `json:"conversionRate,omitempty"`
}

// RankingItem is one agent's position in a ranking, always emitted in
// descending value order with input order preserved on ties.
type RankingItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TemporalPoint is one calendar day of a time series, ascending by
// true chronological order of its dd/mm/yyyy date.
type TemporalPoint struct {
	Date              string `json:"date"`
	Calls             int    `json:"calls"`
	EffectiveContacts int    `json:"effectiveContacts"`
	Sales             int    `json:"sales"`
}

// PeriodComparison holds the period-over-period block of a comparative
// analysis. PreviousConsolidatedFunnel is populated in team mode only.
type PeriodComparison struct {
	CurrentPeriod              string          `json:"currentPeriod"`
	PreviousPeriod             string          `json:"previousPeriod"`
	ComparativeKpis            []KpiComparison `json:"comparativeKpis"`
	PreviousConsolidatedFunnel []FunnelStage   `json:"previousConsolidatedFunnel,omitempty"`
}

// IndividualMetrics is the per-agent analysis output.
type IndividualMetrics struct {
	Kpis          []Kpi             `json:"kpis"`
	Funnel        []FunnelStage     `json:"funnel"`
	TemporalData  []TemporalPoint   `json:"temporalData"`
	IsComparative bool              `json:"isComparative"`
	Comparison    *PeriodComparison `json:"comparison,omitempty"`
}

// TeamMetrics aggregates every agent's most recent period into rankings,
// a consolidated funnel and a summed daily series.
type TeamMetrics struct {
	SalesRanking       []RankingItem     `json:"salesRanking"`
	CallsRanking       []RankingItem     `json:"callsRanking"`
	DocsRanking        []RankingItem     `json:"docsRanking"`
	FollowUpsRanking   []RankingItem     `json:"followUpsRanking"`
	ConsolidatedFunnel []FunnelStage     `json:"consolidatedFunnel"`
	TeamTemporalData   []TemporalPoint   `json:"teamTemporalData"`
	IsComparative      bool              `json:"isComparative"`
	Comparison         *PeriodComparison `json:"comparison,omitempty"`
}

// AnalysisResult is the root output toward the presentation layer.
// Agents whose computation failed are absent from IndividualMetrics and
// excluded from the team aggregates; the omission is recorded in
// Diagnostics.
type AnalysisResult struct {
	IndividualMetrics map[string]IndividualMetrics `json:"individualMetrics"`
	TeamMetrics       TeamMetrics                  `json:"teamMetrics"`
	AgentNames        []string                     `json:"agentNames"`
	Diagnostics       domain.Diagnostics           `json:"diagnostics,omitempty"`
}
