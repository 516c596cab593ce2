package mapper

import (
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
)

// DefaultChunkSize bounds rows per loader transaction for high-volume kinds.
const DefaultChunkSize = 1000

// Rejection is a raw row that could not become a record.
type Rejection struct {
	Index  int
	Row    rawdata.Row
	Reason string
	Err    error
}

// Result is the outcome of mapping one batch.
type Result struct {
	Kind     ingest.Kind
	Records  []ingest.Record
	Rejected []Rejection
	// DroppedFields counts optional columns narrowed to absent.
	DroppedFields map[string]int
}

// Chunks partitions records for the loader. Teams and games stay in a single
// chunk; players and plays are split into chunks of size.
func (r Result) Chunks(size int) [][]ingest.Record {
	if len(r.Records) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if r.Kind == ingest.KindTeam || r.Kind == ingest.KindGame {
		return [][]ingest.Record{r.Records}
	}

	out := make([][]ingest.Record, 0, (len(r.Records)+size-1)/size)
	for start := 0; start < len(r.Records); start += size {
		end := min(start+size, len(r.Records))
		out = append(out, r.Records[start:end])
	}
	return out
}

// Mapper turns raw provider rows into validated domain records.
type Mapper struct {
	now func() time.Time
}

func New() *Mapper {
	return &Mapper{now: time.Now}
}

// Map converts batch into records of kind. A bad row never fails the batch:
// it lands in Result.Rejected instead.
func (m *Mapper) Map(kind ingest.Kind, batch rawdata.Batch) Result {
	result := Result{
		Kind:          kind,
		Records:       make([]ingest.Record, 0, len(batch.Rows)),
		DroppedFields: make(map[string]int),
	}

	for idx, row := range batch.Rows {
		f := &fields{row: row, dropped: result.DroppedFields}

		record, err := m.mapRow(kind, f)
		if err == nil {
			err = record.Validate()
		}
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{
				Index:  idx,
				Row:    row,
				Reason: err.Error(),
				Err:    crerr.Mark(err, ingest.ErrRowRejected),
			})
			continue
		}
		result.Records = append(result.Records, record)
	}

	return result
}

func (m *Mapper) mapRow(kind ingest.Kind, f *fields) (ingest.Record, error) {
	switch kind {
	case ingest.KindTeam:
		return mapTeam(f)
	case ingest.KindGame:
		return mapGame(f)
	case ingest.KindPlayer:
		return mapPlayer(f, m.now().Year())
	case ingest.KindPlay:
		return mapPlay(f)
	default:
		return nil, fmt.Errorf("unsupported entity kind %q", kind)
	}
}

func missing(column string) error {
	return fmt.Errorf("required field %s is missing", column)
}
