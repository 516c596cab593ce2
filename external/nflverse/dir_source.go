package nflverse

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
)

// DirSource reads <kind>.csv or <kind>.json exports from a directory. Plays
// may also be split per season as plays_<season>.csv.
type DirSource struct {
	dir    string
	logger *logging.Logger
}

func NewDirSource(dir string, logger *logging.Logger) *DirSource {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirSource{dir: dir, logger: logger.Named("nflverse")}
}

func (s *DirSource) Fetch(ctx context.Context, kind ingest.Kind, seasons []int) (rawdata.Batch, error) {
	if err := ctx.Err(); err != nil {
		return rawdata.Batch{}, fetchError(err, "fetch %s", kind)
	}

	var keep func(rawdata.Row) bool
	if seasonScoped(kind) {
		keep = seasonFilter(seasons)
	}

	if kind == ingest.KindPlay && len(seasons) > 0 {
		batch, found, err := s.readSeasonFiles(kind, seasons, keep)
		if err != nil {
			return rawdata.Batch{}, fetchError(err, "fetch %s", kind)
		}
		if found {
			s.logger.InfoContext(ctx, "provider batch read", "kind", kind, "rows", len(batch.Rows), "seasons", seasons)
			return batch, nil
		}
	}

	batch, found, err := s.readFile(string(kind), keep)
	if err != nil {
		return rawdata.Batch{}, fetchError(err, "fetch %s", kind)
	}
	if !found {
		return rawdata.Batch{}, fetchError(fs.ErrNotExist, "fetch %s: no %s.csv or %s.json in %s", kind, kind, kind, s.dir)
	}

	s.logger.InfoContext(ctx, "provider batch read", "kind", kind, "rows", len(batch.Rows), "source", batch.Source)
	return batch, nil
}

// readSeasonFiles reads plays_<season> files. It reports found only when
// every requested season has its own file.
func (s *DirSource) readSeasonFiles(kind ingest.Kind, seasons []int, keep func(rawdata.Row) bool) (rawdata.Batch, bool, error) {
	batches := make([]rawdata.Batch, 0, len(seasons))
	for _, season := range seasons {
		batch, found, err := s.readFile(string(kind)+"_"+strconv.Itoa(season), keep)
		if err != nil {
			return rawdata.Batch{}, false, err
		}
		if !found {
			return rawdata.Batch{}, false, nil
		}
		batches = append(batches, batch)
	}
	return mergeBatches(s.dir, batches), true, nil
}

func (s *DirSource) readFile(name string, keep func(rawdata.Row) bool) (rawdata.Batch, bool, error) {
	csvPath := filepath.Join(s.dir, name+".csv")
	file, err := os.Open(csvPath)
	switch {
	case err == nil:
		defer file.Close()
		batch, err := decodeCSV(file, csvPath, keep)
		if err != nil {
			return rawdata.Batch{}, false, fmt.Errorf("read %s: %w", csvPath, err)
		}
		return batch, true, nil
	case !errors.Is(err, fs.ErrNotExist):
		return rawdata.Batch{}, false, fmt.Errorf("open %s: %w", csvPath, err)
	}

	jsonPath := filepath.Join(s.dir, name+".json")
	raw, err := os.ReadFile(jsonPath)
	switch {
	case err == nil:
		batch, err := decodeJSON(raw, jsonPath, keep)
		if err != nil {
			return rawdata.Batch{}, false, fmt.Errorf("read %s: %w", jsonPath, err)
		}
		return batch, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return rawdata.Batch{}, false, nil
	default:
		return rawdata.Batch{}, false, fmt.Errorf("read %s: %w", jsonPath, err)
	}
}
