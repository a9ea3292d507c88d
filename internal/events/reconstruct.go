// Package events normalizes the semi-structured interaction history
// embedded in client rosters into chronologically sortable ClientEvents.
package events

import (
	"strings"

	"github.com/i2sales/insights/internal/domain"
)

// Timeline entry labels as they appear in the historical exports. The
// mapping is closed on purpose: entries outside it are dropped, never
// guessed at.
const (
	labelStatusChange = "mudança de status"
	labelCall         = "ligação"
)

var noteLabels = map[string]struct{}{
	"observação":         {},
	"anotação":           {},
	"mensagem":           {},
	"whatsapp":           {},
	"follow-up agendado": {},
}

// Reconstruct maps every client's raw timeline into normalized events.
// Output order is unspecified; sorting is the metrics engine's job.
func Reconstruct(clients []domain.Client) ([]domain.ClientEvent, domain.Diagnostics) {
	var diags domain.Diagnostics
	events := make([]domain.ClientEvent, 0, len(clients)*4)

	for _, client := range clients {
		for _, entry := range client.History {
			event, ok := normalizeEntry(client, entry)
			if !ok {
				diags.Add(domain.DiagDroppedTimelineEntry, client.ID, "timeline entry %q dropped (unrecognized label or missing timestamp)", entry.Type)
				continue
			}
			events = append(events, event)
		}
	}
	return events, diags
}

func normalizeEntry(client domain.Client, entry domain.HistoryEntry) (domain.ClientEvent, bool) {
	if strings.TrimSpace(entry.Date) == "" {
		return domain.ClientEvent{}, false
	}

	label := strings.ToLower(strings.TrimSpace(entry.Type))
	event := domain.ClientEvent{
		ClientID:  client.ID,
		Timestamp: entry.Date,
	}

	switch {
	case label == labelStatusChange:
		event.Type = domain.EventStatusChange
		event.Details.From = entry.Meta.From
		event.Details.To = entry.Meta.To
		if entry.Meta.To == domain.StatusSaleClosed && client.SaleValue > 0 {
			event.Details.SaleValue = client.SaleValue
		}
	case label == labelCall:
		event.Type = domain.EventCall
		event.Details.Result = callResult(entry.Content)
	default:
		if _, ok := noteLabels[label]; !ok {
			return domain.ClientEvent{}, false
		}
		event.Type = domain.EventNote
		event.Details.NoteType = noteType(entry.Content)
	}
	return event, true
}

// callResult derives the call outcome by substring-matching the entry's
// free text. CNE is checked before CE so a non-effective marker never
// misreads as effective. An unrecognizable text leaves the result empty.
func callResult(content string) domain.CallResult {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, strings.ToLower(string(domain.CallNonEffective))):
		return domain.CallNonEffective
	case strings.Contains(lower, strings.ToLower(string(domain.CallEffective))):
		return domain.CallEffective
	default:
		return ""
	}
}

func noteType(content string) domain.NoteType {
	if strings.Contains(strings.ToLower(content), strings.ToLower(string(domain.NoteNonEffective))) {
		return domain.NoteNonEffective
	}
	return domain.NoteObservation
}
