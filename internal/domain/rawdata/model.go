package rawdata

import "strings"

// Row is one loosely typed provider record keyed by column name.
type Row map[string]string

// Batch is every row the provider returned for one entity kind.
type Batch struct {
	Source  string
	Columns []string
	Rows    []Row
}

var absentValues = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"None": {},
}

// Value returns the trimmed value for column and whether it is present.
func (r Row) Value(column string) (string, bool) {
	raw, ok := r[column]
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if _, absent := absentValues[value]; absent {
		return "", false
	}
	return value, true
}

// First returns the first present value among columns, in order.
func (r Row) First(columns ...string) (string, string, bool) {
	for _, column := range columns {
		if value, ok := r.Value(column); ok {
			return column, value, true
		}
	}
	return "", "", false
}
