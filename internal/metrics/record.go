package metrics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/i2sales/insights/internal/domain"
)

// Analyzer runs the record-driven engine. Now is injectable so
// follow-up bucketing ("before today" vs "on or after today") is
// deterministic under test; it defaults to time.Now.
type Analyzer struct {
	Now func() time.Time
}

func (a Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// productivityTotals are the raw sums over one period's daily rows.
type productivityTotals struct {
	sales             int
	calls             int
	effectiveContacts int
	averageCallsDay   float64
	recordCalls       int
}

func sumProductivity(rows []domain.ProductivityRow) productivityTotals {
	var t productivityTotals
	for _, row := range rows {
		t.sales += row.Sales
		t.calls += row.Calls
		t.effectiveContacts += row.EffectiveContacts
		if row.Calls > t.recordCalls {
			t.recordCalls = row.Calls
		}
	}
	if len(rows) > 0 {
		t.averageCallsDay = float64(t.calls) / float64(len(rows))
	}
	return t
}

// sortSetsMostRecentFirst returns a copy of the period sets ranked by
// descending sort key, so index 0 is the current period.
func sortSetsMostRecentFirst(sets []domain.ProductivitySet) []domain.ProductivitySet {
	sorted := make([]domain.ProductivitySet, len(sets))
	copy(sorted, sets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period.SortKey > sorted[j].Period.SortKey
	})
	return sorted
}

// ParseFollowUpDate reads the date portion of a "dd/mm/yyyy[, hh:mm]"
// follow-up field. Malformed dates (non-4-digit year, impossible
// calendar dates) return ok=false and are excluded from both buckets.
func ParseFollowUpDate(raw string) (time.Time, bool) {
	datePart := strings.TrimSpace(strings.SplitN(raw, ",", 2)[0])
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, false // rolled over, e.g. 31/02
	}
	return date, true
}

func (a Analyzer) followUpBuckets(clients []domain.Client) (realized, future int) {
	now := a.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, client := range clients {
		date, ok := ParseFollowUpDate(client.FollowUpDate)
		if !ok {
			continue
		}
		if date.Before(today) {
			realized++
		} else {
			future++
		}
	}
	return realized, future
}

func countByStage(clients []domain.Client, stage domain.Stage) int {
	count := 0
	for _, client := range clients {
		if domain.ClassifyStatus(client.Status) == stage {
			count++
		}
	}
	return count
}

// parseBrazilianDate parses dd/mm/yyyy; unparsable dates sort first.
func parseBrazilianDate(raw string) time.Time {
	date, err := time.ParseInLocation("02/01/2006", strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}
	}
	return date
}

// ComputeIndividual derives one agent's metrics from its most recent
// period set, switching to comparative mode when a second set exists.
func (a Analyzer) ComputeIndividual(bundle domain.AgentBundle) (IndividualMetrics, error) {
	if len(bundle.ProductivitySets) == 0 {
		return IndividualMetrics{}, fmt.Errorf("agent %q has no productivity sets", bundle.Name)
	}

	sorted := sortSetsMostRecentFirst(bundle.ProductivitySets)
	current := sorted[0]
	totals := sumProductivity(current.Rows)
	realized, future := a.followUpBuckets(bundle.Clients)

	kpis := []Kpi{
		{Label: "Total de Vendas", Value: strconv.Itoa(totals.sales)},
		{Label: "Média de Ligações/Dia", Value: fmt.Sprintf("%.1f", totals.averageCallsDay)},
		{Label: "Recorde de Ligações (1 dia)", Value: strconv.Itoa(totals.recordCalls)},
		{Label: "Follow-ups Realizados", Value: strconv.Itoa(realized)},
		{Label: "Follow-ups Futuros", Value: strconv.Itoa(future)},
	}

	funnel := buildFunnel([]FunnelStage{
		{Name: StageCalls, Value: totals.calls},
		{Name: StageAttendance, Value: totals.effectiveContacts},
		{Name: StageTratativa, Value: countByStage(bundle.Clients, domain.StageTratativa)},
		{Name: StageDocumentation, Value: countByStage(bundle.Clients, domain.StageDocumentation)},
		{Name: StageSale, Value: totals.sales},
	})

	temporal := make([]TemporalPoint, 0, len(current.Rows))
	for _, row := range current.Rows {
		temporal = append(temporal, TemporalPoint{
			Date:              row.Date,
			Calls:             row.Calls,
			EffectiveContacts: row.EffectiveContacts,
			Sales:             row.Sales,
		})
	}
	sort.SliceStable(temporal, func(i, j int) bool {
		return parseBrazilianDate(temporal[i].Date).Before(parseBrazilianDate(temporal[j].Date))
	})

	result := IndividualMetrics{Kpis: kpis, Funnel: funnel, TemporalData: temporal}

	if len(sorted) > 1 {
		previous := sumProductivity(sorted[1].Rows)
		result.IsComparative = true
		result.Comparison = &PeriodComparison{
			CurrentPeriod:  current.Period.Display,
			PreviousPeriod: sorted[1].Period.Display,
			ComparativeKpis: []KpiComparison{
				{
					Label:            "Total de Vendas",
					CurrentValue:     strconv.Itoa(totals.sales),
					PreviousValue:    strconv.Itoa(previous.sales),
					ChangePercentage: CalculateChange(float64(totals.sales), float64(previous.sales)),
				},
				{
					Label:            "Média de Ligações/Dia",
					CurrentValue:     fmt.Sprintf("%.1f", totals.averageCallsDay),
					PreviousValue:    fmt.Sprintf("%.1f", previous.averageCallsDay),
					ChangePercentage: CalculateChange(totals.averageCallsDay, previous.averageCallsDay),
				},
				{
					Label:            "Recorde de Ligações",
					CurrentValue:     strconv.Itoa(totals.recordCalls),
					PreviousValue:    strconv.Itoa(previous.recordCalls),
					ChangePercentage: CalculateChange(float64(totals.recordCalls), float64(previous.recordCalls)),
				},
			},
		}
	}
	return result, nil
}

// ComputeTeam aggregates every agent's most recent period set. Team
// comparison only activates when every agent carries at least two sets.
func (a Analyzer) ComputeTeam(bundles []domain.AgentBundle) TeamMetrics {
	team := TeamMetrics{
		SalesRanking:       []RankingItem{},
		CallsRanking:       []RankingItem{},
		DocsRanking:        []RankingItem{},
		FollowUpsRanking:   []RankingItem{},
		ConsolidatedFunnel: []FunnelStage{},
		TeamTemporalData:   []TemporalPoint{},
	}
	if len(bundles) == 0 {
		return team
	}

	type agentSlice struct {
		name    string
		rows    []domain.ProductivityRow
		clients []domain.Client
		sorted  []domain.ProductivitySet
	}

	slices := make([]agentSlice, 0, len(bundles))
	var allRecentRows []domain.ProductivityRow
	var allClients []domain.Client
	for _, bundle := range bundles {
		sorted := sortSetsMostRecentFirst(bundle.ProductivitySets)
		rows := []domain.ProductivityRow{}
		if len(sorted) > 0 {
			rows = sorted[0].Rows
		}
		slices = append(slices, agentSlice{name: bundle.Name, rows: rows, clients: bundle.Clients, sorted: sorted})
		allRecentRows = append(allRecentRows, rows...)
		allClients = append(allClients, bundle.Clients...)
	}

	type rankRow struct {
		name      string
		sales     float64
		calls     float64
		docs      float64
		followUps float64
	}
	ranks := make([]rankRow, 0, len(slices))
	for _, s := range slices {
		totals := sumProductivity(s.rows)
		realized, _ := a.followUpBuckets(s.clients)
		ranks = append(ranks, rankRow{
			name:      s.name,
			sales:     float64(totals.sales),
			calls:     float64(totals.calls),
			docs:      float64(countByStage(s.clients, domain.StageDocumentation)),
			followUps: float64(realized),
		})
	}

	ranking := func(value func(rankRow) float64) []RankingItem {
		items := make([]RankingItem, 0, len(ranks))
		for _, r := range ranks {
			items = append(items, RankingItem{Name: r.name, Value: value(r)})
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })
		return items
	}
	team.SalesRanking = ranking(func(r rankRow) float64 { return r.sales })
	team.CallsRanking = ranking(func(r rankRow) float64 { return r.calls })
	team.DocsRanking = ranking(func(r rankRow) float64 { return r.docs })
	team.FollowUpsRanking = ranking(func(r rankRow) float64 { return r.followUps })

	allTotals := sumProductivity(allRecentRows)
	tratativas := countByStage(allClients, domain.StageTratativa)
	documentations := countByStage(allClients, domain.StageDocumentation)

	team.ConsolidatedFunnel = buildFunnel([]FunnelStage{
		{Name: StageCalls, Value: allTotals.calls},
		{Name: StageAttendance, Value: allTotals.effectiveContacts},
		{Name: StageTratativa, Value: tratativas},
		{Name: StageDocumentation, Value: documentations},
		{Name: StageSale, Value: allTotals.sales},
	})

	// Daily calls summed across agents, keyed by calendar date.
	daily := map[string]int{}
	for _, row := range allRecentRows {
		daily[row.Date] += row.Calls
	}
	for date, calls := range daily {
		team.TeamTemporalData = append(team.TeamTemporalData, TemporalPoint{Date: date, Calls: calls})
	}
	sort.SliceStable(team.TeamTemporalData, func(i, j int) bool {
		return parseBrazilianDate(team.TeamTemporalData[i].Date).Before(parseBrazilianDate(team.TeamTemporalData[j].Date))
	})

	for _, s := range slices {
		if len(s.sorted) < 2 {
			return team
		}
	}

	var currentRows, previousRows []domain.ProductivityRow
	for _, s := range slices {
		currentRows = append(currentRows, s.sorted[0].Rows...)
		previousRows = append(previousRows, s.sorted[1].Rows...)
	}
	currentTotals := sumProductivity(currentRows)
	previousTotals := sumProductivity(previousRows)

	// The client-derived stages repeat in the previous funnel: there is
	// only one roster snapshot per agent.
	previousFunnel := buildFunnel([]FunnelStage{
		{Name: StageCalls, Value: previousTotals.calls},
		{Name: StageAttendance, Value: previousTotals.effectiveContacts},
		{Name: StageTratativa, Value: tratativas},
		{Name: StageDocumentation, Value: documentations},
		{Name: StageSale, Value: previousTotals.sales},
	})

	team.IsComparative = true
	team.Comparison = &PeriodComparison{
		CurrentPeriod:  slices[0].sorted[0].Period.Display,
		PreviousPeriod: slices[0].sorted[1].Period.Display,
		ComparativeKpis: []KpiComparison{
			{
				Label:            "Total de Vendas",
				CurrentValue:     strconv.Itoa(currentTotals.sales),
				PreviousValue:    strconv.Itoa(previousTotals.sales),
				ChangePercentage: CalculateChange(float64(currentTotals.sales), float64(previousTotals.sales)),
			},
			{
				Label:            "Total de Ligações",
				CurrentValue:     strconv.Itoa(currentTotals.calls),
				PreviousValue:    strconv.Itoa(previousTotals.calls),
				ChangePercentage: CalculateChange(float64(currentTotals.calls), float64(previousTotals.calls)),
			},
			{
				Label:            "Contatos Efetivos",
				CurrentValue:     strconv.Itoa(currentTotals.effectiveContacts),
				PreviousValue:    strconv.Itoa(previousTotals.effectiveContacts),
				ChangePercentage: CalculateChange(float64(currentTotals.effectiveContacts), float64(previousTotals.effectiveContacts)),
			},
		},
		PreviousConsolidatedFunnel: previousFunnel,
	}
	return team
}

// Analyze runs the full record-driven pipeline. A failing agent is
// omitted from the individual metrics and excluded from the team
// aggregates; the omission surfaces as a diagnostic, never an error.
func (a Analyzer) Analyze(bundles []domain.AgentBundle) AnalysisResult {
	result := AnalysisResult{IndividualMetrics: map[string]IndividualMetrics{}}

	healthy := make([]domain.AgentBundle, 0, len(bundles))
	for _, bundle := range bundles {
		individual, err := a.ComputeIndividual(bundle)
		if err != nil {
			result.Diagnostics.Add(domain.DiagAgentMetricsFailed, bundle.Name, "individual metrics skipped: %v", err)
			continue
		}
		result.IndividualMetrics[bundle.Name] = individual
		healthy = append(healthy, bundle)
	}

	result.TeamMetrics = a.ComputeTeam(healthy)

	result.AgentNames = make([]string, 0, len(bundles))
	for _, bundle := range bundles {
		result.AgentNames = append(result.AgentNames, bundle.Name)
	}
	sort.Strings(result.AgentNames)
	return result
}

// ErrAgentNotFound reports a metrics lookup for an unknown agent.
var ErrAgentNotFound = errors.New("agent not found in analysis result")

// IndividualFor fetches one agent's metrics from a result.
func (r AnalysisResult) IndividualFor(agent string) (IndividualMetrics, error) {
	metrics, ok := r.IndividualMetrics[agent]
	if !ok {
		return IndividualMetrics{}, fmt.Errorf("%w: %s", ErrAgentNotFound, agent)
	}
	return metrics, nil
}
