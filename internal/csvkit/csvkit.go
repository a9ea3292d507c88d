// Package csvkit turns raw CSV text into ordered typed records. It has
// no knowledge of domain semantics: callers map records onto their own
// row types.
package csvkit

import (
	"strconv"
	"strings"
)

// Field is one parsed CSV cell. Numeric-looking values that contain no
// "/" are coerced to numbers; the guard keeps date strings such as
// 10/05/2024 textual.
type Field struct {
	Text     string
	Number   float64
	IsNumber bool
}

// Record maps a column header to its cell for one CSV row.
type Record map[string]Field

// Text returns the raw string value of a column, "" when absent.
func (r Record) Text(key string) string {
	return r[key].Text
}

// Int returns the coerced integer value of a column, 0 when the cell is
// absent or non-numeric.
func (r Record) Int(key string) int {
	f := r[key]
	if !f.IsNumber {
		return 0
	}
	return int(f.Number)
}

// Float returns the coerced numeric value of a column, 0 when the cell
// is absent or non-numeric.
func (r Record) Float(key string) float64 {
	return r[key].Number
}

// Table is the parse result: row 1's headers in input order plus one
// record per data row.
type Table struct {
	Headers []string
	Records []Record
}

// Parse converts raw CSV text into a Table. A leading UTF-8 BOM is
// stripped, blank lines are dropped and a header-only file yields no
// records. Rows with fewer cells than headers pad the missing trailing
// columns with empty strings; malformed rows never fail the parse.
func Parse(content string) Table {
	content = strings.TrimPrefix(content, "\uFEFF")

	lines := make([]string, 0, 64)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		var headers []string
		if len(lines) == 1 {
			headers = splitHeader(lines[0])
		}
		return Table{Headers: headers}
	}

	headers := splitHeader(lines[0])
	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		record := make(Record, len(headers))
		for i, header := range headers {
			raw := ""
			if i < len(values) {
				raw = values[i]
			}
			record[header] = coerce(raw)
		}
		records = append(records, record)
	}
	return Table{Headers: headers, Records: records}
}

func splitHeader(line string) []string {
	parts := strings.Split(line, ",")
	headers := make([]string, len(parts))
	for i, part := range parts {
		headers[i] = strings.TrimSpace(part)
	}
	return headers
}

// splitFields splits one row on commas while tracking quote parity, so
// literal commas inside double-quoted cells never split the field.
func splitFields(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// coerce trims a raw cell, strips a matching pair of surrounding double
// quotes (unescaping "" to "), and applies numeric coercion.
func coerce(raw string) Field {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = strings.ReplaceAll(value[1:len(value)-1], `""`, `"`)
	}
	if value != "" && !strings.Contains(value, "/") {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return Field{Text: value, Number: n, IsNumber: true}
		}
	}
	return Field{Text: value}
}
