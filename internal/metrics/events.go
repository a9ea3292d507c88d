package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/i2sales/insights/internal/domain"
)

// recentEventLimit caps the newest-first activity slice exposed to the
// presentation layer.
const recentEventLimit = 15

// EventTemporalPoint is one day of the event-driven series. Sales and
// GrossSalesValue are daily deltas and may be negative when a sale was
// reversed that day.
type EventTemporalPoint struct {
	Date              string  `json:"date"`
	Calls             int     `json:"calls"`
	EffectiveContacts int     `json:"effectiveContacts"`
	Tratativas        int     `json:"tratativas"`
	Documentations    int     `json:"documentations"`
	Sales             int     `json:"sales"`
	GrossSalesValue   float64 `json:"grossSalesValue"`
}

// EventAnalysis is the output of the event-driven engine for a single
// agent and date range.
type EventAnalysis struct {
	Kpis           []Kpi                `json:"kpis"`
	Funnel         []FunnelStage        `json:"funnel"`
	TemporalData   []EventTemporalPoint `json:"temporalData"`
	FilteredEvents []domain.ClientEvent `json:"filteredEvents"`
	RecentEvents   []domain.ClientEvent `json:"recentEvents"`
}

// clientState is the per-client accumulator threaded through the single
// ordered pass: first-occurrence flags plus the last recorded sale
// value, needed to reverse a reopened deal.
type clientState struct {
	called        bool
	contacted     bool
	inTratativa   bool
	documented    bool
	lastSaleValue float64
}

type dayCounters struct {
	calls           int
	effective       int
	tratativas      int
	documentations  int
	sales           int
	grossSalesValue float64
}

// FilterEventsByRange keeps events whose timestamp date falls inside
// the inclusive [from, to] range.
func FilterEventsByRange(events []domain.ClientEvent, from, to time.Time) []domain.ClientEvent {
	fromDay := from.Format("2006-01-02")
	toDay := to.Format("2006-01-02")
	filtered := make([]domain.ClientEvent, 0, len(events))
	for _, event := range events {
		day := event.Day()
		if day >= fromDay && day <= toDay {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// AnalyzeEvents runs the event-driven engine: filter, stable
// chronological sort, then one streaming pass with explicit accumulator
// state. An empty post-filter set yields a zeroed result, not an error.
func AnalyzeEvents(events []domain.ClientEvent, from, to time.Time) EventAnalysis {
	filtered := FilterEventsByRange(events, from, to)

	ordered := make([]domain.ClientEvent, len(filtered))
	copy(ordered, filtered)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	states := map[string]*clientState{}
	days := map[string]*dayCounters{}
	dayOrder := make([]string, 0, 32)

	counterFor := func(day string) *dayCounters {
		counter := days[day]
		if counter == nil {
			counter = &dayCounters{}
			days[day] = counter
			dayOrder = append(dayOrder, day)
		}
		return counter
	}
	stateFor := func(clientID string) *clientState {
		state := states[clientID]
		if state == nil {
			state = &clientState{}
			states[clientID] = state
		}
		return state
	}

	for _, event := range ordered {
		day := counterFor(event.Day())
		state := stateFor(event.ClientID)

		switch event.Type {
		case domain.EventCall:
			if !state.called {
				state.called = true
				day.calls++
			}
			if event.Details.Result == domain.CallEffective && !state.contacted {
				state.contacted = true
				day.effective++
			}
		case domain.EventNote:
			// A generic observation counts as an effective contact;
			// first of either trigger (CALL-CE or NOTE) wins.
			if event.Details.NoteType == domain.NoteObservation && !state.contacted {
				state.contacted = true
				day.effective++
			}
		case domain.EventStatusChange:
			status := event.Details.To
			if domain.ClassifyStatus(status) == domain.StageTratativa && !state.inTratativa {
				state.inTratativa = true
				day.tratativas++
			}
			if status == domain.StatusDocComplete && !state.documented {
				state.documented = true
				day.documentations++
			}
			// Sales and VGV are signed counters: every transition into
			// the closed status counts, and leaving it reverses the
			// previously recorded value.
			if status == domain.StatusSaleClosed {
				day.sales++
				day.grossSalesValue += event.Details.SaleValue
				state.lastSaleValue = event.Details.SaleValue
			} else if event.Details.From == domain.StatusSaleClosed {
				day.sales--
				day.grossSalesValue -= state.lastSaleValue
				state.lastSaleValue = 0
			}
		}
	}

	var (
		totalCalls     int
		totalEffective int
		totalTratativa int
		totalDocs      int
		netSales       int
		netVGV         float64
	)
	temporal := make([]EventTemporalPoint, 0, len(dayOrder))
	for _, day := range dayOrder {
		counter := days[day]
		totalCalls += counter.calls
		totalEffective += counter.effective
		totalTratativa += counter.tratativas
		totalDocs += counter.documentations
		netSales += counter.sales
		netVGV += counter.grossSalesValue
		temporal = append(temporal, EventTemporalPoint{
			Date:              displayDay(day),
			Calls:             counter.calls,
			EffectiveContacts: counter.effective,
			Tratativas:        counter.tratativas,
			Documentations:    counter.documentations,
			Sales:             counter.sales,
			GrossSalesValue:   counter.grossSalesValue,
		})
	}

	saleStage := netSales
	if saleStage < 0 {
		saleStage = 0 // display floor; the KPI keeps the signed value
	}

	kpis := []Kpi{
		{Label: "Total de VGV", Value: fmt.Sprintf("R$ %.2f", netVGV)},
		{Label: "Vendas", Value: strconv.Itoa(netSales)},
		{Label: "Ligações", Value: strconv.Itoa(totalCalls)},
		{Label: "Contatos Efetivos", Value: strconv.Itoa(totalEffective)},
		{Label: "Tratativas", Value: strconv.Itoa(totalTratativa)},
		{Label: "Documentação", Value: strconv.Itoa(totalDocs)},
	}

	funnel := buildFunnel([]FunnelStage{
		{Name: StageCalls, Value: totalCalls},
		{Name: StageAttendance, Value: totalEffective},
		{Name: StageTratativa, Value: totalTratativa},
		{Name: StageDocumentation, Value: totalDocs},
		{Name: StageSale, Value: saleStage},
	})

	recent := make([]domain.ClientEvent, len(filtered))
	copy(recent, filtered)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp > recent[j].Timestamp
	})
	if len(recent) > recentEventLimit {
		recent = recent[:recentEventLimit]
	}

	return EventAnalysis{
		Kpis:           kpis,
		Funnel:         funnel,
		TemporalData:   temporal,
		FilteredEvents: filtered,
		RecentEvents:   recent,
	}
}

// displayDay reformats yyyy-mm-dd as dd/mm/yyyy for presentation.
func displayDay(day string) string {
	if len(day) != 10 {
		return day
	}
	return day[8:10] + "/" + day[5:7] + "/" + day[0:4]
}
