package domain

// EventType tags a normalized client event.
type EventType string

const (
	EventStatusChange EventType = "STATUS_CHANGE"
	EventCall         EventType = "CALL"
	EventNote         EventType = "NOTE"
)

// CallResult is the outcome classification of a phone call.
type CallResult string

const (
	CallEffective    CallResult = "CE"
	CallNonEffective CallResult = "CNE"
)

// NoteType distinguishes a generic observation from a logged
// non-effective-contact note. The marker strings are preserved exactly
// from the historical data and must not be reworded.
type NoteType string

const (
	NoteObservation  NoteType = "Observação"
	NoteNonEffective NoteType = "CNE"
)

// EventDetails carries the type-specific payload of a ClientEvent.
// From may be empty on an initial STATUS_CHANGE; To is always set.
// Result is empty when a call carries no recognizable outcome marker.
type EventDetails struct {
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	SaleValue float64    `json:"saleValue,omitempty"`
	Result    CallResult `json:"result,omitempty"`
	NoteType  NoteType   `json:"noteType,omitempty"`
}

// ClientEvent is the normalized unit consumed by the event-driven
// metrics engine. Timestamp is an ISO-ish string whose lexicographic
// order matches chronological order.
type ClientEvent struct {
	ClientID  string       `json:"clientId"`
	Timestamp string       `json:"timestamp"`
	Type      EventType    `json:"type"`
	Details   EventDetails `json:"details"`
}

// Day returns the date portion of the timestamp (yyyy-mm-dd).
func (e ClientEvent) Day() string {
	if len(e.Timestamp) < 10 {
		return e.Timestamp
	}
	return e.Timestamp[:10]
}
