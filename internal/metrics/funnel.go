package metrics

import "math"

// Funnel stage names, fixed in pipeline order.
const (
	StageCalls         = "Ligações"
	StageAttendance    = "Atendimento"
	StageTratativa     = "Tratativa"
	StageDocumentation = "Documentação"
	StageSale          = "Venda"
)

// buildFunnel attaches conversion rates to an ordered stage sequence:
// rate = 100 * value / previous value, 0 when the previous stage is
// empty, absent on the first stage.
func buildFunnel(stages []FunnelStage) []FunnelStage {
	out := make([]FunnelStage, len(stages))
	copy(out, stages)
	for i := 1; i < len(out); i++ {
		rate := 0.0
		if out[i-1].Value > 0 {
			rate = 100 * float64(out[i].Value) / float64(out[i-1].Value)
		}
		out[i].ConversionRate = &rate
	}
	return out
}

// CalculateChange returns the signed percentage change between periods.
// A zero previous value yields +Inf when anything was produced now and
// 0 otherwise.
func CalculateChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (current - previous) / previous * 100
}
