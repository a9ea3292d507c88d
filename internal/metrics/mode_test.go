package metrics

import (
	"testing"

	"github.com/i2sales/insights/internal/domain"
)

func bundleWithPeriods(name string, periods int) domain.AgentBundle {
	bundle := domain.AgentBundle{Name: name}
	for i := 0; i < periods; i++ {
		bundle.ProductivitySets = append(bundle.ProductivitySets, domain.ProductivitySet{})
	}
	return bundle
}

func TestResolveMode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		bundles []domain.AgentBundle
		want    Mode
	}{
		{
			name:    "single agent single period",
			bundles: []domain.AgentBundle{bundleWithPeriods("Maria", 1)},
			want:    ModeIndividual,
		},
		{
			name:    "single agent two periods",
			bundles: []domain.AgentBundle{bundleWithPeriods("Maria", 2)},
			want:    ModeIndividualComparative,
		},
		{
			name:    "two agents single period",
			bundles: []domain.AgentBundle{bundleWithPeriods("Maria", 1), bundleWithPeriods("Joao", 1)},
			want:    ModeTeam,
		},
		{
			name:    "two agents one with two periods",
			bundles: []domain.AgentBundle{bundleWithPeriods("Maria", 1), bundleWithPeriods("Joao", 2)},
			want:    ModeTeamComparative,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			info := ResolveMode(tc.bundles)
			if info.Mode != tc.want {
				t.Fatalf("mode got %q want %q", info.Mode, tc.want)
			}
			if info.Title == "" || info.Description == "" {
				t.Fatalf("mode header incomplete: %+v", info)
			}
		})
	}
}

func TestResolveModeIndividualTitleNamesAgent(t *testing.T) {
	t.Parallel()

	info := ResolveMode([]domain.AgentBundle{bundleWithPeriods("Maria", 1)})
	if got, want := info.Title, "Análise Individual: Maria"; got != want {
		t.Fatalf("title got %q want %q", got, want)
	}
}
