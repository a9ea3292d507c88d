package ingest

import (
	"regexp"
	"strings"

	"github.com/i2sales/insights/internal/domain"
)

// FileKind is the record kind encoded in a filename prefix.
type FileKind string

const (
	KindProductivity FileKind = "produtividade"
	KindClients      FileKind = "clientes"
)

// FileInfo is the metadata recovered from a conforming filename.
type FileInfo struct {
	Kind      FileKind
	AgentName string
	Period    domain.Period
}

var (
	// <kind>_<agent>_<periodSpec>.csv, agent segment without underscores.
	basePattern  = regexp.MustCompile(`(?i)^(produtividade|clientes)_([^_]+)_(.+)$`)
	rangePattern = regexp.MustCompile(`^(\d{8})-(\d{8})$`)
)

// ExtractFileInfo parses a filename into kind, agent and period. It
// never fails: non-conforming names return ok=false so the caller can
// skip the file with a warning.
func ExtractFileInfo(filename string) (FileInfo, bool) {
	clean := strings.TrimSuffix(filename, ".csv")
	match := basePattern.FindStringSubmatch(clean)
	if match == nil {
		return FileInfo{}, false
	}

	info := FileInfo{
		Kind:      FileKind(strings.ToLower(match[1])),
		AgentName: match[2],
	}

	periodSpec := match[3]
	if dates := rangePattern.FindStringSubmatch(periodSpec); dates != nil {
		info.Period = domain.Period{
			Display: formatDayMonthYear(dates[1]) + " - " + formatDayMonthYear(dates[2]),
			SortKey: sortKeyFromStart(dates[1]),
		}
		return info, true
	}

	// Non-chronological period naming is tolerated, not fatal: the raw
	// spec doubles as display and sort key.
	info.Period = domain.Period{Display: periodSpec, SortKey: periodSpec}
	return info, true
}

// formatDayMonthYear renders ddmmyyyy as dd/mm/yyyy.
func formatDayMonthYear(d string) string {
	return d[0:2] + "/" + d[2:4] + "/" + d[4:8]
}

// sortKeyFromStart renders the ddmmyyyy start date as yyyymmdd, which
// sorts lexicographically in chronological order.
func sortKeyFromStart(d string) string {
	return d[4:8] + d[2:4] + d[0:2]
}
