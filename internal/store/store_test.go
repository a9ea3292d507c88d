package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/i2sales/insights/internal/metrics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() metrics.AnalysisResult {
	return metrics.AnalysisResult{
		IndividualMetrics: map[string]metrics.IndividualMetrics{
			"Maria": {
				Kpis: []metrics.Kpi{{Label: "Total de Vendas", Value: "3"}},
				Comparison: &metrics.PeriodComparison{
					CurrentPeriod:  "01/03/2024 a 31/03/2024",
					PreviousPeriod: "01/02/2024 a 29/02/2024",
					ComparativeKpis: []metrics.KpiComparison{
						{Label: "Total de Vendas", CurrentValue: "3", PreviousValue: "0", ChangePercentage: math.Inf(1)},
					},
				},
				IsComparative: true,
			},
		},
		AgentNames: []string{"Maria"},
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveSnapshot(ctx, "/data/csv", metrics.ModeIndividualComparative, sampleResult())
	if err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	snapshot, err := s.LoadSnapshot(ctx, runID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got, want := snapshot.Mode, metrics.ModeIndividualComparative; got != want {
		t.Fatalf("mode got %q want %q", got, want)
	}
	if got, want := snapshot.AgentCount, 1; got != want {
		t.Fatalf("agent count got %d want %d", got, want)
	}
	individual, ok := snapshot.Result.IndividualMetrics["Maria"]
	if !ok {
		t.Fatal("stored result missing agent metrics")
	}
	change := individual.Comparison.ComparativeKpis[0].ChangePercentage
	if !math.IsInf(change, 1) {
		t.Fatalf("change percentage got %v want +Inf", change)
	}
}

func TestSaveSnapshotDenormalizesAgentKpis(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveSnapshot(ctx, "/data/csv", metrics.ModeIndividual, sampleResult())
	if err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	kpis, err := s.AgentKpis(ctx, runID)
	if err != nil {
		t.Fatalf("agent kpis: %v", err)
	}
	if got, want := len(kpis), 1; got != want {
		t.Fatalf("kpi count got %d want %d", got, want)
	}
	if kpis[0].Agent != "Maria" || kpis[0].Label != "Total de Vendas" || kpis[0].Value != "3" {
		t.Fatalf("unexpected kpi row %+v", kpis[0])
	}
}

func TestLoadSnapshotNotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, err := s.LoadSnapshot(context.Background(), "missing"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("error got %v want ErrSnapshotNotFound", err)
	}
	if _, err := s.LoadLatest(context.Background()); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("latest error got %v want ErrSnapshotNotFound", err)
	}
}

func TestListSnapshotsNewestFirst(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveSnapshot(ctx, "/data/a", metrics.ModeIndividual, sampleResult())
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := s.SaveSnapshot(ctx, "/data/b", metrics.ModeTeam, sampleResult())
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	snapshots, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if got, want := len(snapshots), 2; got != want {
		t.Fatalf("snapshot count got %d want %d", got, want)
	}
	if snapshots[0].RunID != second && snapshots[0].RunID != first {
		t.Fatalf("unexpected run id %q", snapshots[0].RunID)
	}
	if snapshots[0].Result != nil {
		t.Fatal("list should not hydrate results")
	}

	latest, err := s.LoadLatest(ctx)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if latest.RunID != snapshots[0].RunID {
		t.Fatalf("latest run %q does not match list head %q", latest.RunID, snapshots[0].RunID)
	}
}
