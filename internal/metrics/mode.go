package metrics

import "github.com/i2sales/insights/internal/domain"

// Mode identifies which presentation the loaded data supports.
type Mode string

const (
	ModeIndividual            Mode = "individual"
	ModeIndividualComparative Mode = "individual-comparative"
	ModeTeam                  Mode = "team"
	ModeTeamComparative       Mode = "team-comparative"
)

// ModeInfo carries the resolved mode plus ready-made header strings.
type ModeInfo struct {
	Mode        Mode   `json:"mode"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ResolveMode picks the analysis mode from the loaded bundles: team when
// more than one agent is present, comparative when any agent carries
// more than one productivity period.
func ResolveMode(bundles []domain.AgentBundle) ModeInfo {
	team := len(bundles) > 1
	comparative := false
	for _, bundle := range bundles {
		if len(bundle.ProductivitySets) > 1 {
			comparative = true
			break
		}
	}

	var mode Mode
	switch {
	case team && comparative:
		mode = ModeTeamComparative
	case team:
		mode = ModeTeam
	case comparative:
		mode = ModeIndividualComparative
	default:
		mode = ModeIndividual
	}

	agent := ""
	if len(bundles) == 1 {
		agent = bundles[0].Name
	}
	return ModeInfoFor(mode, agent)
}

// ModeInfoFor attaches the header strings to an already-known mode,
// used when a stored analysis is re-rendered. Agent is ignored for the
// team modes.
func ModeInfoFor(mode Mode, agent string) ModeInfo {
	switch mode {
	case ModeTeamComparative:
		return ModeInfo{
			Mode:        mode,
			Title:       "Análise de Equipe (Comparativa)",
			Description: "Comparação de performance da equipe entre períodos",
		}
	case ModeTeam:
		return ModeInfo{
			Mode:        mode,
			Title:       "Análise de Equipe",
			Description: "Performance consolidada da equipe",
		}
	case ModeIndividualComparative:
		return ModeInfo{
			Mode:        mode,
			Title:       "Análise Individual (Comparativa): " + agent,
			Description: "Comparação de performance entre períodos",
		}
	default:
		return ModeInfo{
			Mode:        ModeIndividual,
			Title:       "Análise Individual: " + agent,
			Description: "Performance do período selecionado",
		}
	}
}
