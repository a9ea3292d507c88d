package domain

// Period identifies one reporting window of productivity data.
// SortKey is lexicographically sortable (yyyymmdd for recognized ranges),
// so the most recent period is the highest key.
type Period struct {
	Display string `json:"display"`
	SortKey string `json:"sortKey"`
}

// ProductivityRow is one calendar day of an agent's counters.
type ProductivityRow struct {
	Date              string `json:"date"` // dd/mm/yyyy
	Calls             int    `json:"calls"`
	EffectiveContacts int    `json:"effectiveContacts"`
	NonEffective      int    `json:"nonEffective"`
	Tratativas        int    `json:"tratativas"`
	Documentations    int    `json:"documentations"`
	Sales             int    `json:"sales"`
}

// ProductivitySet groups the daily rows of a single reporting period.
type ProductivitySet struct {
	Period Period            `json:"period"`
	Rows   []ProductivityRow `json:"rows"`
}

// HistoryMeta carries the status transition endpoints of a timeline entry.
type HistoryMeta struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HistoryEntry is one raw interaction item embedded in a client roster row.
// Type is free text matched against the closed label vocabulary in the
// events package; entries outside that vocabulary are dropped downstream.
type HistoryEntry struct {
	Type    string      `json:"type"`
	Date    string      `json:"date"`
	Content string      `json:"content"`
	Meta    HistoryMeta `json:"meta"`
}

// Client is one roster entry belonging to exactly one agent.
type Client struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	FollowUpDate string         `json:"followUpDate"` // dd/mm/yyyy[, hh:mm]
	Phone        string         `json:"phone,omitempty"`
	Email        string         `json:"email,omitempty"`
	Origin       string         `json:"origin,omitempty"`
	RegisteredAt string         `json:"registeredAt,omitempty"`
	SaleValue    float64        `json:"saleValue,omitempty"`
	History      []HistoryEntry `json:"history,omitempty"`
}

// AgentBundle is the all-or-nothing ingestion unit: at least one
// productivity period set and exactly one client roster snapshot.
type AgentBundle struct {
	Name             string            `json:"name"`
	ProductivitySets []ProductivitySet `json:"productivitySets"`
	Clients          []Client          `json:"clients"`
}
