package ingest

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/i2sales/insights/internal/csvkit"
	"github.com/i2sales/insights/internal/domain"
)

// attachmentsColumn is the embedded-JSON column whose timeline array
// drives event reconstruction.
const attachmentsColumn = "Anexos (JSON)"

// Roster is the result of the roster-centric ingestion path: one file
// per agent holding that agent's full client list.
type Roster struct {
	Agent   string
	Clients []domain.Client
}

type rosterAttachments struct {
	Timeline []domain.HistoryEntry `json:"timeline"`
}

// AgentNameFromRosterFile derives the agent identity from a roster
// filename: extension stripped, underscores become spaces.
func AgentNameFromRosterFile(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ReplaceAll(base, "_", " ")
}

// LoadRoster parses one roster file. Rows missing the identity columns
// are dropped; a malformed attachments payload leaves that client's
// history empty. Both degradations surface as diagnostics, never errors.
func LoadRoster(file NamedFile) (Roster, domain.Diagnostics) {
	clients, diags := clientsFromTable(csvkit.Parse(file.Content), true)
	return Roster{
		Agent:   AgentNameFromRosterFile(file.Name),
		Clients: clients,
	}, diags
}

// LoadRosters parses every file as an agent roster.
func LoadRosters(files []NamedFile) ([]Roster, domain.Diagnostics) {
	var diags domain.Diagnostics
	rosters := make([]Roster, 0, len(files))
	for _, file := range files {
		roster, rosterDiags := LoadRoster(file)
		diags = append(diags, rosterDiags...)
		rosters = append(rosters, roster)
	}
	return rosters, diags
}

// clientsFromTable maps roster records to clients. When requireIdentity
// is set (roster-centric path), rows without both ID Cliente and Nome
// are dropped.
func clientsFromTable(table csvkit.Table, requireIdentity bool) ([]domain.Client, domain.Diagnostics) {
	var diags domain.Diagnostics
	clients := make([]domain.Client, 0, len(table.Records))

	for i, record := range table.Records {
		client := domain.Client{
			ID:           record.Text("ID Cliente"),
			Name:         record.Text("Nome"),
			Status:       record.Text("Status"),
			FollowUpDate: record.Text("Data Follow-up"),
			Phone:        record.Text("Telefone"),
			Email:        record.Text("E-mail"),
			Origin:       record.Text("Origem"),
			RegisteredAt: record.Text("Data Cadastro"),
			SaleValue:    record.Float("Valor Venda"),
		}

		if requireIdentity && (client.ID == "" || client.Name == "") {
			diags.Add(domain.DiagMissingIdentity, rowSubject(i, client.ID), "row missing ID Cliente or Nome; dropped")
			continue
		}

		if raw := record.Text(attachmentsColumn); raw != "" {
			var attachments rosterAttachments
			if err := json.Unmarshal([]byte(raw), &attachments); err != nil {
				diags.Add(domain.DiagMalformedTimeline, rowSubject(i, client.ID), "malformed attachments JSON: %v; history left empty", err)
			} else {
				client.History = attachments.Timeline
			}
		}

		clients = append(clients, client)
	}
	return clients, diags
}

func rowSubject(index int, clientID string) string {
	if clientID != "" {
		return clientID
	}
	return "row " + strconv.Itoa(index+2) // 1-based, after the header row
}
