package metrics

import (
	"reflect"
	"testing"
	"time"

	"github.com/i2sales/insights/internal/domain"
)

func fixedAnalyzer() Analyzer {
	return Analyzer{Now: func() time.Time {
		return time.Date(2024, time.June, 15, 12, 30, 0, 0, time.Local)
	}}
}

func sampleBundle() domain.AgentBundle {
	return domain.AgentBundle{
		Name: "Maria",
		ProductivitySets: []domain.ProductivitySet{{
			Period: domain.Period{Display: "01/03/2024 a 31/03/2024", SortKey: "20240301"},
			Rows: []domain.ProductivityRow{
				{Date: "01/03/2024", Calls: 40, EffectiveContacts: 12, Sales: 1},
				{Date: "15/01/2024", Calls: 25, EffectiveContacts: 8, Sales: 0},
				{Date: "02/03/2024", Calls: 31, EffectiveContacts: 9, Sales: 2},
			},
		}},
		Clients: []domain.Client{
			{ID: "C1", Status: "Tratativa", FollowUpDate: "10/06/2024, 14:00"},
			{ID: "C2", Status: "Documentação", FollowUpDate: "20/06/2024"},
			{ID: "C3", Status: "Venda Gerada", FollowUpDate: "31/02/2024"},
			{ID: "C4", Status: "Em Análise"},
		},
	}
}

func TestComputeIndividualKpis(t *testing.T) {
	t.Parallel()

	got, err := fixedAnalyzer().ComputeIndividual(sampleBundle())
	if err != nil {
		t.Fatalf("ComputeIndividual: %v", err)
	}

	want := []Kpi{
		{Label: "Total de Vendas", Value: "3"},
		{Label: "Média de Ligações/Dia", Value: "32.0"},
		{Label: "Recorde de Ligações (1 dia)", Value: "40"},
		{Label: "Follow-ups Realizados", Value: "1"},
		{Label: "Follow-ups Futuros", Value: "1"},
	}
	if !reflect.DeepEqual(got.Kpis, want) {
		t.Fatalf("kpis got %+v want %+v", got.Kpis, want)
	}
}

func TestComputeIndividualTemporalIsChronological(t *testing.T) {
	t.Parallel()

	got, err := fixedAnalyzer().ComputeIndividual(sampleBundle())
	if err != nil {
		t.Fatalf("ComputeIndividual: %v", err)
	}

	// 15/01 precedes 01/03 even though it sorts after lexically.
	want := []string{"15/01/2024", "01/03/2024", "02/03/2024"}
	for i, point := range got.TemporalData {
		if point.Date != want[i] {
			t.Fatalf("temporal[%d] got %q want %q", i, point.Date, want[i])
		}
	}
}

func TestComputeIndividualFunnelCounts(t *testing.T) {
	t.Parallel()

	got, err := fixedAnalyzer().ComputeIndividual(sampleBundle())
	if err != nil {
		t.Fatalf("ComputeIndividual: %v", err)
	}

	values := map[string]int{}
	for _, stage := range got.Funnel {
		values[stage.Name] = stage.Value
	}
	// Two statuses map into the documentation stage.
	wantValues := map[string]int{
		StageCalls:         96,
		StageAttendance:    29,
		StageTratativa:     1,
		StageDocumentation: 2,
		StageSale:          3,
	}
	if !reflect.DeepEqual(values, wantValues) {
		t.Fatalf("funnel values got %v want %v", values, wantValues)
	}
}

func TestComputeIndividualComparative(t *testing.T) {
	t.Parallel()

	bundle := sampleBundle()
	bundle.ProductivitySets = append(bundle.ProductivitySets, domain.ProductivitySet{
		Period: domain.Period{Display: "01/02/2024 a 29/02/2024", SortKey: "20240201"},
		Rows: []domain.ProductivityRow{
			{Date: "05/02/2024", Calls: 50, EffectiveContacts: 10, Sales: 0},
		},
	})

	got, err := fixedAnalyzer().ComputeIndividual(bundle)
	if err != nil {
		t.Fatalf("ComputeIndividual: %v", err)
	}
	if !got.IsComparative || got.Comparison == nil {
		t.Fatalf("comparative block missing: %+v", got)
	}
	if gotPeriod, want := got.Comparison.CurrentPeriod, "01/03/2024 a 31/03/2024"; gotPeriod != want {
		t.Fatalf("current period got %q want %q", gotPeriod, want)
	}
	if gotPeriod, want := got.Comparison.PreviousPeriod, "01/02/2024 a 29/02/2024"; gotPeriod != want {
		t.Fatalf("previous period got %q want %q", gotPeriod, want)
	}
	sales := got.Comparison.ComparativeKpis[0]
	if sales.CurrentValue != "3" || sales.PreviousValue != "0" {
		t.Fatalf("sales comparison got %+v", sales)
	}
}

func TestComputeIndividualNoSetsFails(t *testing.T) {
	t.Parallel()

	_, err := fixedAnalyzer().ComputeIndividual(domain.AgentBundle{Name: "Vazio"})
	if err == nil {
		t.Fatal("expected error for agent without productivity sets")
	}
}

func TestParseFollowUpDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw string
		ok  bool
	}{
		{raw: "10/06/2024, 14:00", ok: true},
		{raw: "20/06/2024", ok: true},
		{raw: "31/02/2024", ok: false},
		{raw: "10/06/24", ok: false},
		{raw: "", ok: false},
		{raw: "amanhã", ok: false},
	}
	for _, tc := range cases {
		if _, ok := ParseFollowUpDate(tc.raw); ok != tc.ok {
			t.Fatalf("ParseFollowUpDate(%q) ok got %v want %v", tc.raw, ok, tc.ok)
		}
	}
}

func TestComputeTeamRankingKeepsTieOrder(t *testing.T) {
	t.Parallel()

	bundles := []domain.AgentBundle{
		teamBundle("Alice", 10),
		teamBundle("Bruno", 30),
		teamBundle("Carla", 30),
	}

	team := fixedAnalyzer().ComputeTeam(bundles)
	wantOrder := []string{"Bruno", "Carla", "Alice"}
	for i, item := range team.CallsRanking {
		if item.Name != wantOrder[i] {
			t.Fatalf("calls ranking[%d] got %q want %q", i, item.Name, wantOrder[i])
		}
	}
}

func teamBundle(name string, calls int) domain.AgentBundle {
	return domain.AgentBundle{
		Name: name,
		ProductivitySets: []domain.ProductivitySet{{
			Period: domain.Period{Display: "01/03/2024 a 31/03/2024", SortKey: "20240301"},
			Rows:   []domain.ProductivityRow{{Date: "01/03/2024", Calls: calls}},
		}},
	}
}

func TestComputeTeamComparisonRequiresAllAgents(t *testing.T) {
	t.Parallel()

	withTwo := teamBundle("Alice", 10)
	withTwo.ProductivitySets = append(withTwo.ProductivitySets, domain.ProductivitySet{
		Period: domain.Period{Display: "01/02/2024 a 29/02/2024", SortKey: "20240201"},
		Rows:   []domain.ProductivityRow{{Date: "05/02/2024", Calls: 7}},
	})
	withOne := teamBundle("Bruno", 30)

	team := fixedAnalyzer().ComputeTeam([]domain.AgentBundle{withTwo, withOne})
	if team.IsComparative || team.Comparison != nil {
		t.Fatalf("comparison should be absent when an agent has a single period: %+v", team.Comparison)
	}

	withOne.ProductivitySets = append(withOne.ProductivitySets, domain.ProductivitySet{
		Period: domain.Period{Display: "01/02/2024 a 29/02/2024", SortKey: "20240201"},
		Rows:   []domain.ProductivityRow{{Date: "06/02/2024", Calls: 9}},
	})
	team = fixedAnalyzer().ComputeTeam([]domain.AgentBundle{withTwo, withOne})
	if !team.IsComparative || team.Comparison == nil {
		t.Fatal("comparison should activate once every agent has two periods")
	}
	if got, want := team.Comparison.ComparativeKpis[1].CurrentValue, "40"; got != want {
		t.Fatalf("team calls current got %q want %q", got, want)
	}
	if got, want := team.Comparison.ComparativeKpis[1].PreviousValue, "16"; got != want {
		t.Fatalf("team calls previous got %q want %q", got, want)
	}
}

func TestAnalyzeExcludesFailedAgents(t *testing.T) {
	t.Parallel()

	bundles := []domain.AgentBundle{
		sampleBundle(),
		{Name: "Vazio"},
	}

	result := fixedAnalyzer().Analyze(bundles)
	if _, ok := result.IndividualMetrics["Vazio"]; ok {
		t.Fatal("failed agent should be absent from individual metrics")
	}
	if _, ok := result.IndividualMetrics["Maria"]; !ok {
		t.Fatal("healthy agent missing from individual metrics")
	}
	if got := result.Diagnostics.ByCode(domain.DiagAgentMetricsFailed); len(got) != 1 {
		t.Fatalf("failure diagnostics got %d want 1", len(got))
	}
	if got, want := result.AgentNames, []string{"Maria", "Vazio"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("agent names got %v want %v", got, want)
	}
	// Team aggregates come from the healthy agent only.
	if got, want := len(result.TeamMetrics.SalesRanking), 1; got != want {
		t.Fatalf("sales ranking size got %d want %d", got, want)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()

	bundles := []domain.AgentBundle{sampleBundle(), teamBundle("Bruno", 30)}
	analyzer := fixedAnalyzer()

	first := analyzer.Analyze(bundles)
	second := analyzer.Analyze(bundles)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated analysis over identical input diverged")
	}
}

func TestIndividualFor(t *testing.T) {
	t.Parallel()

	result := fixedAnalyzer().Analyze([]domain.AgentBundle{sampleBundle()})
	if _, err := result.IndividualFor("Maria"); err != nil {
		t.Fatalf("IndividualFor(Maria): %v", err)
	}
	if _, err := result.IndividualFor("Ninguém"); err == nil {
		t.Fatal("expected lookup failure for unknown agent")
	}
}
