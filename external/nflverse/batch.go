// Package nflverse materializes nflverse-shaped CSV and JSON releases as raw
// provider batches.
package nflverse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
)

const seasonColumn = "season"

// seasonScoped reports whether rows of kind carry a season to filter on.
func seasonScoped(kind ingest.Kind) bool {
	return kind == ingest.KindGame || kind == ingest.KindPlay
}

func fetchError(err error, format string, args ...any) error {
	return crerr.Mark(crerr.Wrapf(err, format, args...), ingest.ErrFetch)
}

// seasonFilter keeps rows in seasons. Rows whose season does not parse are
// kept so the mapper rejects them visibly.
func seasonFilter(seasons []int) func(rawdata.Row) bool {
	if len(seasons) == 0 {
		return nil
	}
	allowed := make(map[int]struct{}, len(seasons))
	for _, season := range seasons {
		allowed[season] = struct{}{}
	}
	return func(row rawdata.Row) bool {
		raw, ok := row.Value(seasonColumn)
		if !ok {
			return true
		}
		season, err := strconv.Atoi(raw)
		if err != nil {
			return true
		}
		_, keep := allowed[season]
		return keep
	}
}

func decodeCSV(r io.Reader, source string, keep func(rawdata.Row) bool) (rawdata.Batch, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return rawdata.Batch{Source: source, Rows: []rawdata.Row{}}, nil
	}
	if err != nil {
		return rawdata.Batch{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, column := range header {
		columns[i] = strings.TrimSpace(column)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	rows := make([]rawdata.Row, 0, 256)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rawdata.Batch{}, fmt.Errorf("read csv record: %w", err)
		}

		row := make(rawdata.Row, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		if keep != nil && !keep(row) {
			continue
		}
		rows = append(rows, row)
	}

	return rawdata.Batch{Source: source, Columns: columns, Rows: rows}, nil
}

// decodeJSON accepts an array of flat objects. Nested values are rejected by
// the mapper as unparseable text.
func decodeJSON(raw []byte, source string, keep func(rawdata.Row) bool) (rawdata.Batch, error) {
	var items []map[string]any
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return rawdata.Batch{}, fmt.Errorf("decode json batch: %w", err)
	}

	seen := make(map[string]struct{})
	rows := make([]rawdata.Row, 0, len(items))
	for _, item := range items {
		row := make(rawdata.Row, len(item))
		for column, value := range item {
			seen[column] = struct{}{}
			if text, ok := jsonText(value); ok {
				row[column] = text
			}
		}
		if keep != nil && !keep(row) {
			continue
		}
		rows = append(rows, row)
	}

	columns := make([]string, 0, len(seen))
	for column := range seen {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	return rawdata.Batch{Source: source, Columns: columns, Rows: rows}, nil
}

func jsonText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		encoded, err := sonic.MarshalString(v)
		if err != nil {
			return "", false
		}
		return encoded, true
	}
}

// mergeBatches concatenates per-season batches, keeping the first-seen
// column order.
func mergeBatches(source string, batches []rawdata.Batch) rawdata.Batch {
	out := rawdata.Batch{Source: source, Rows: []rawdata.Row{}}
	seen := make(map[string]struct{})
	for _, batch := range batches {
		for _, column := range batch.Columns {
			if _, ok := seen[column]; ok {
				continue
			}
			seen[column] = struct{}{}
			out.Columns = append(out.Columns, column)
		}
		out.Rows = append(out.Rows, batch.Rows...)
	}
	return out
}
