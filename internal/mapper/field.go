package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
)

// fields reads one raw row and tallies optional columns it had to drop.
type fields struct {
	row     rawdata.Row
	dropped map[string]int
}

func (f *fields) drop(column string) {
	f.dropped[column]++
}

func (f *fields) str(column string) (string, bool) {
	return f.row.Value(column)
}

// intIn returns the column coerced to int when it lies in [lo, hi].
func (f *fields) intIn(column string, lo, hi int) *int {
	raw, ok := f.row.Value(column)
	if !ok {
		return nil
	}
	v, ok := parseInt(raw)
	if !ok || v < lo || v > hi {
		f.drop(column)
		return nil
	}
	return &v
}

// firstIntIn tries columns in order and keeps the first valid value.
func (f *fields) firstIntIn(columns []string, lo, hi int) *int {
	seen := ""
	for _, column := range columns {
		raw, ok := f.row.Value(column)
		if !ok {
			continue
		}
		if v, ok := parseInt(raw); ok && v >= lo && v <= hi {
			return &v
		}
		if seen == "" {
			seen = column
		}
	}
	if seen != "" {
		f.drop(seen)
	}
	return nil
}

func (f *fields) floatIn(column string, lo, hi float64) *float64 {
	raw, ok := f.row.Value(column)
	if !ok {
		return nil
	}
	v, ok := parseFloat(raw)
	if !ok || v < lo || v > hi {
		f.drop(column)
		return nil
	}
	return &v
}

// flag reads a boolean indicator. Absent or unparseable means false.
func (f *fields) flag(column string) bool {
	raw, ok := f.row.Value(column)
	if !ok {
		return false
	}
	v, ok := parseBool(raw)
	if !ok {
		f.drop(column)
		return false
	}
	return v
}

// teamRef canonicalizes an optional team reference.
func (f *fields) teamRef(column string) string {
	raw, ok := f.row.Value(column)
	if !ok {
		return ""
	}
	abbr, ok := team.Canonical(raw)
	if !ok {
		f.drop(column)
		return ""
	}
	return abbr
}

// ref normalizes an optional foreign-key id.
func (f *fields) ref(column string, maxLen int) string {
	raw, ok := f.row.Value(column)
	if !ok {
		return ""
	}
	if len(raw) > maxLen {
		f.drop(column)
		return ""
	}
	return raw
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.Atoi(raw); err == nil {
		return v, true
	}
	fv, ok := parseFloat(raw)
	if !ok || fv > math.MaxInt32 || fv < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(fv)), true
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true, true
	case "0", "0.0", "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

// text returns an optional free-text column no longer than maxLen.
func (f *fields) text(column string, maxLen int) string {
	value, ok := f.str(column)
	if !ok {
		return ""
	}
	if len(value) > maxLen {
		f.drop(column)
		return ""
	}
	return value
}

// url returns an optional column that must look like an http(s) URL.
func (f *fields) url(column string) string {
	value, ok := f.str(column)
	if !ok {
		return ""
	}
	if !strings.HasPrefix(value, "http") {
		f.drop(column)
		return ""
	}
	return value
}
