// Package insight turns an analysis result into managerial commentary
// through a Gemini-style generateContent endpoint. Prompt assembly is
// pure and separately testable; the HTTP client sits behind small
// interfaces so tests never touch the network.
package insight

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/i2sales/insights/internal/metrics"
)

// systemInstruction frames the model as a sales management analyst and
// pins the reference conversion rates it should benchmark against.
const systemInstruction = "Você é um assistente de gerência de vendas, um especialista em análise de dados. " +
	"Sua tarefa é analisar os dados de performance de vendas fornecidos e gerar insights acionáveis, " +
	"concisos e claros em português do Brasil. Para a análise do funil de vendas, considere as seguintes " +
	"taxas de conversão ideais como referência: da etapa 1 para a 2 (Ligações -> Atendimento) é 30%; " +
	"da 2 para a 3 (Atendimento -> Tratativa) é 20%; da 3 para a 4 (Tratativa -> Documentação) é 20%; " +
	"e da 4 para a 5 (Documentação -> Venda) é 20%. Compare os resultados atuais com essas metas para " +
	"identificar desvios e oportunidades. Responda de forma profissional e direta. Formate sua resposta " +
	"usando markdown com os cabeçalhos exatos fornecidos no prompt (### Resumo, ### Destaques Positivos, etc.). " +
	"Use '**' para negrito para destacar termos importantes e '-' para listas de itens."

const reportSections = `### Resumo
%s

### Destaques Positivos
%s

### Pontos de Atenção
%s

### Ações Sugeridas
%s
`

const rankingPromptLimit = 5

var (
	// ErrAgentMetricsMissing reports an individual request for an agent
	// absent from the analysis result.
	ErrAgentMetricsMissing = errors.New("dados do agente selecionado não encontrados")

	// ErrInvalidRequest reports a prompt request that names neither a
	// valid team nor a resolvable agent.
	ErrInvalidRequest = errors.New("modo de análise inválido ou agente não selecionado")
)

func topRanking(items []metrics.RankingItem) []metrics.RankingItem {
	if len(items) > rankingPromptLimit {
		return items[:rankingPromptLimit]
	}
	return items
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// TeamPrompt renders the team analysis request sent as user content.
func TeamPrompt(team metrics.TeamMetrics) string {
	comparative := ""
	if team.IsComparative && team.Comparison != nil {
		comparative = fmt.Sprintf(
			"- Comparativo de KPIs (Período Atual vs Anterior): %s\n",
			mustJSON(team.Comparison.ComparativeKpis),
		)
	}
	return fmt.Sprintf(`Análise de Equipe:
- Ranking de Vendas: %s
- Ranking de Ligações: %s
- Funil de Vendas Consolidado: %s
%s
Com base nestes dados da equipe, forneça um relatório com as seguintes seções:
`+reportSections,
		mustJSON(topRanking(team.SalesRanking)),
		mustJSON(topRanking(team.CallsRanking)),
		mustJSON(team.ConsolidatedFunnel),
		comparative,
		"Um resumo conciso da performance geral da equipe.",
		"Destaques positivos (ex: quem está performando bem e em quê).",
		"Pontos de atenção ou áreas que precisam de melhoria.",
		"Duas sugestões de ações práticas que um gestor pode tomar para melhorar os resultados.",
	)
}

// IndividualPrompt renders one agent's analysis request.
func IndividualPrompt(agentName string, individual metrics.IndividualMetrics) string {
	comparative := ""
	if individual.IsComparative && individual.Comparison != nil {
		comparative = fmt.Sprintf(
			"- Comparativo de KPIs (Período %s vs %s): %s\n",
			individual.Comparison.CurrentPeriod,
			individual.Comparison.PreviousPeriod,
			mustJSON(individual.Comparison.ComparativeKpis),
		)
	}
	return fmt.Sprintf(`Análise Individual do Agente: %s
- KPIs Principais: %s
- Funil de Vendas: %s
%s
Com base nestes dados do agente, forneça um relatório com as seguintes seções:
`+reportSections,
		agentName,
		mustJSON(individual.Kpis),
		mustJSON(individual.Funnel),
		comparative,
		"Um resumo conciso da performance do agente.",
		"Os principais pontos fortes (destaques positivos).",
		"Pontos de atenção ou áreas onde o agente pode melhorar.",
		"Duas sugestões de ações práticas que um gestor pode tomar para apoiar o desenvolvimento deste agente.",
	)
}

// IndividualModeFor downgrades a team mode to its individual
// counterpart, used when the caller singles out one agent.
func IndividualModeFor(mode metrics.Mode) metrics.Mode {
	switch mode {
	case metrics.ModeTeam:
		return metrics.ModeIndividual
	case metrics.ModeTeamComparative:
		return metrics.ModeIndividualComparative
	default:
		return mode
	}
}

// BuildPrompt resolves the request into the user prompt string: team
// mode ignores the agent, individual mode requires one that exists.
func BuildPrompt(result metrics.AnalysisResult, mode metrics.Mode, agent string) (string, error) {
	switch mode {
	case metrics.ModeTeam, metrics.ModeTeamComparative:
		return TeamPrompt(result.TeamMetrics), nil
	case metrics.ModeIndividual, metrics.ModeIndividualComparative:
		if agent == "" {
			return "", ErrInvalidRequest
		}
		individual, ok := result.IndividualMetrics[agent]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrAgentMetricsMissing, agent)
		}
		return IndividualPrompt(agent, individual), nil
	default:
		return "", ErrInvalidRequest
	}
}
