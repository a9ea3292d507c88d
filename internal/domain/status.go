package domain

import "strings"

// Canonical pipeline status labels as they appear in the rosters.
const (
	StatusTratativa   = "Tratativa"
	StatusSaleClosed  = "Venda Gerada"
	StatusDocComplete = "Doc Completa"
)

// Stage is the canonical pipeline stage a raw status string maps to.
// Unrecognized labels classify as StageUnclassified instead of being
// silently excluded.
type Stage int

const (
	StageUnclassified Stage = iota
	StageTratativa
	StageDocumentation
	StageSale
)

func (s Stage) String() string {
	switch s {
	case StageTratativa:
		return "tratativa"
	case StageDocumentation:
		return "documentation"
	case StageSale:
		return "sale"
	default:
		return "unclassified"
	}
}

// statusStages is the closed mapping from raw roster labels (including
// historical spelling variants) to canonical stages.
var statusStages = map[string]Stage{
	"tratativa":      StageTratativa,
	"documentação":   StageDocumentation,
	"documentacao":   StageDocumentation,
	"aguardando doc": StageDocumentation,
	"em análise":     StageDocumentation,
	"em analise":     StageDocumentation,
	"venda gerada":   StageSale,
}

// ClassifyStatus maps a free-text roster status to a canonical stage.
func ClassifyStatus(raw string) Stage {
	if stage, ok := statusStages[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return stage
	}
	return StageUnclassified
}
