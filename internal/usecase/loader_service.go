package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// maxResultErrors bounds LoadResult.Errors; the remainder is summarized.
const maxResultErrors = 100

type LoaderService struct {
	logger *logging.Logger
}

func NewLoaderService(logger *logging.Logger) *LoaderService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoaderService{logger: logger.Named("loader")}
}

// knownKeys holds the natural keys already stored for each referenced kind.
// A nil map means the kind was not consulted.
type knownKeys struct {
	teams   map[string]struct{}
	players map[string]struct{}
	games   map[string]struct{}
}

func (k knownKeys) has(set map[string]struct{}, key string) bool {
	if key == "" || set == nil {
		return key == ""
	}
	_, ok := set[key]
	return ok
}

type loadState struct {
	result       ingest.LoadResult
	suppressed   int
	nulled       int
	placeholders int
}

func (st *loadState) fail(key string, err error) {
	st.result.RecordsSkipped++
	st.addError(fmt.Sprintf("%s %s: %v", st.result.Kind, key, err))
}

func (st *loadState) addError(msg string) {
	if len(st.result.Errors) >= maxResultErrors {
		st.suppressed++
		return
	}
	st.result.Errors = append(st.result.Errors, msg)
}

// Load upserts chunks of one entity kind through session. Chunks run
// sequentially, one transaction each. Record-level failures are skipped and
// reported; only cancellation or an unusable session marks the result failed.
func (s *LoaderService) Load(ctx context.Context, session ingest.Session, kind ingest.Kind, chunks [][]ingest.Record) ingest.LoadResult {
	return s.LoadWithRejections(ctx, session, kind, chunks, nil)
}

// LoadWithRejections is Load for a mapped batch. The mapper's rejection
// messages lead Errors and share its cap with record failures.
func (s *LoaderService) LoadWithRejections(
	ctx context.Context,
	session ingest.Session,
	kind ingest.Kind,
	chunks [][]ingest.Record,
	rejections []string,
) ingest.LoadResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoaderService.Load",
		attribute.String("ingest.kind", string(kind)),
		attribute.Int("ingest.chunks", len(chunks)),
	)
	defer span.End()

	st := &loadState{result: ingest.LoadResult{
		Kind:      kind,
		Success:   true,
		Errors:    []string{},
		StartTime: time.Now(),
	}}
	st.result.RecordsRejected = len(rejections)
	for _, msg := range rejections {
		st.addError(msg)
	}

	refs, err := s.readKnownKeys(ctx, session, kind)
	if err != nil {
		st.result.Success = false
		st.addError(fmt.Sprintf("read stored references: %v", err))
		return s.finish(ctx, st)
	}

	for idx, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			st.result.Success = false
			st.addError(fmt.Sprintf("load cancelled before chunk %d/%d: %v", idx+1, len(chunks), err))
			break
		}
		if !s.loadChunk(ctx, session, kind, chunk, refs, st) {
			st.result.Success = false
		}
	}

	return s.finish(ctx, st)
}

func (s *LoaderService) finish(ctx context.Context, st *loadState) ingest.LoadResult {
	if st.suppressed > 0 {
		st.result.Errors = append(st.result.Errors, fmt.Sprintf("%d further errors suppressed", st.suppressed))
	}
	st.result.EndTime = time.Now()
	st.result.DurationSeconds = st.result.EndTime.Sub(st.result.StartTime).Seconds()

	s.logger.InfoContext(ctx, "load finished",
		"kind", st.result.Kind,
		"success", st.result.Success,
		"processed", st.result.RecordsProcessed,
		"inserted", st.result.RecordsInserted,
		"updated", st.result.RecordsUpdated,
		"skipped", st.result.RecordsSkipped,
		"nulled_references", st.nulled,
		"placeholder_players", st.placeholders,
		"duration_seconds", st.result.DurationSeconds,
	)
	return st.result
}

func (s *LoaderService) readKnownKeys(ctx context.Context, session ingest.Session, kind ingest.Kind) (knownKeys, error) {
	var refs knownKeys
	if kind != ingest.KindPlayer && kind != ingest.KindPlay {
		return refs, nil
	}

	var err error
	if refs.teams, err = session.NaturalKeys(ctx, ingest.KindTeam); err != nil {
		return refs, fmt.Errorf("team keys: %w", err)
	}
	if kind == ingest.KindPlayer {
		return refs, nil
	}
	if refs.players, err = session.NaturalKeys(ctx, ingest.KindPlayer); err != nil {
		return refs, fmt.Errorf("player keys: %w", err)
	}
	if refs.players == nil {
		refs.players = make(map[string]struct{})
	}
	if refs.games, err = session.NaturalKeys(ctx, ingest.KindGame); err != nil {
		return refs, fmt.Errorf("game keys: %w", err)
	}
	return refs, nil
}

// loadChunk reports false when the chunk could not be attempted at all.
func (s *LoaderService) loadChunk(
	ctx context.Context,
	session ingest.Session,
	kind ingest.Kind,
	chunk []ingest.Record,
	refs knownKeys,
	st *loadState,
) bool {
	st.result.RecordsProcessed += len(chunk)

	tx, err := session.Begin(ctx)
	if err != nil {
		st.result.RecordsSkipped += len(chunk)
		st.addError(fmt.Sprintf("begin chunk transaction: %v", err))
		return false
	}

	var inserted, updated int
	created := make(map[string]struct{})
	staged := make([]stagedRecord, 0, len(chunk))
	for _, record := range chunk {
		prepared, nulled, missing, err := prepareRecord(kind, record, refs)
		if err != nil {
			st.fail(naturalKey(record), err)
			continue
		}
		st.nulled += nulled

		if err := upsertPlaceholders(ctx, tx, missing, created); err != nil {
			st.fail(prepared.NaturalKey(), crerr.Mark(err, ingest.ErrRecordPersist))
			continue
		}
		outcome, err := upsertRecord(ctx, tx, prepared)
		if err != nil {
			st.fail(prepared.NaturalKey(), crerr.Mark(err, ingest.ErrRecordPersist))
			s.logger.DebugContext(ctx, "record skipped", "kind", kind, "natural_key", prepared.NaturalKey(), "error", err)
			continue
		}
		switch outcome {
		case ingest.OutcomeInserted:
			inserted++
		case ingest.OutcomeUpdated:
			updated++
		}
		staged = append(staged, stagedRecord{record: prepared, placeholders: missing})
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		commitErr := crerr.Mark(crerr.Wrapf(err, "commit %s chunk of %d", kind, len(chunk)), ingest.ErrChunkCommit)
		st.addError(commitErr.Error())
		s.logger.WarnContext(ctx, "chunk commit failed, retrying per record", "kind", kind, "records", len(staged), "error", err)
		s.loadRecordwise(ctx, session, staged, refs, st)
		return true
	}

	st.result.RecordsInserted += inserted
	st.result.RecordsUpdated += updated
	st.placeholders += refs.addPlayers(created)
	return true
}

// stagedRecord is a prepared record plus the placeholder players it needs.
type stagedRecord struct {
	record       ingest.Record
	placeholders []string
}

// addPlayers marks committed placeholder ids as stored and returns how many
// were new.
func (k knownKeys) addPlayers(ids map[string]struct{}) int {
	added := 0
	for id := range ids {
		if _, ok := k.players[id]; ok {
			continue
		}
		k.players[id] = struct{}{}
		added++
	}
	return added
}

// upsertPlaceholders stores a placeholder player for each id not yet created
// in this transaction.
func upsertPlaceholders(ctx context.Context, tx ingest.Tx, ids []string, created map[string]struct{}) error {
	for _, id := range ids {
		if _, ok := created[id]; ok {
			continue
		}
		if _, err := tx.UpsertPlayer(ctx, player.Placeholder(id)); err != nil {
			return fmt.Errorf("placeholder player %s: %w", id, err)
		}
		created[id] = struct{}{}
	}
	return nil
}

// loadRecordwise commits each record in its own transaction so one bad row
// cannot sink the rest of a failed chunk.
func (s *LoaderService) loadRecordwise(ctx context.Context, session ingest.Session, records []stagedRecord, refs knownKeys, st *loadState) {
	for _, item := range records {
		created := make(map[string]struct{})
		for _, id := range item.placeholders {
			if refs.has(refs.players, id) {
				created[id] = struct{}{}
			}
		}
		outcome, err := s.loadOne(ctx, session, item, created)
		if err != nil {
			st.fail(item.record.NaturalKey(), crerr.Mark(err, ingest.ErrRecordPersist))
			continue
		}
		st.placeholders += refs.addPlayers(created)
		switch outcome {
		case ingest.OutcomeInserted:
			st.result.RecordsInserted++
		case ingest.OutcomeUpdated:
			st.result.RecordsUpdated++
		}
	}
}

func (s *LoaderService) loadOne(ctx context.Context, session ingest.Session, item stagedRecord, created map[string]struct{}) (ingest.Outcome, error) {
	tx, err := session.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin record transaction: %w", err)
	}
	if err := upsertPlaceholders(ctx, tx, item.placeholders, created); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	outcome, err := upsertRecord(ctx, tx, item.record)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("commit record: %w", err)
	}
	return outcome, nil
}

// prepareRecord re-validates record and nulls team references the store does
// not hold. It returns how many references were nulled, plus the play
// participant ids that need a placeholder player.
func prepareRecord(kind ingest.Kind, record ingest.Record, refs knownKeys) (ingest.Record, int, []string, error) {
	if record == nil {
		return nil, 0, nil, fmt.Errorf("nil record")
	}
	if err := record.Validate(); err != nil {
		return nil, 0, nil, err
	}

	switch item := record.(type) {
	case team.Team:
		if kind != ingest.KindTeam {
			break
		}
		return item, 0, nil, nil
	case game.Game:
		if kind != ingest.KindGame {
			break
		}
		return item, 0, nil, nil
	case player.Player:
		if kind != ingest.KindPlayer {
			break
		}
		nulled := 0
		if !refs.has(refs.teams, item.TeamAbbr) {
			item.TeamAbbr = ""
			nulled++
		}
		return item, nulled, nil, nil
	case play.Play:
		if kind != ingest.KindPlay {
			break
		}
		if !refs.has(refs.games, item.GameID) {
			return nil, 0, nil, fmt.Errorf("game %s is not loaded", item.GameID)
		}
		nulled := 0
		for _, ref := range []*string{&item.PossessionTeam, &item.DefenseTeam} {
			if !refs.has(refs.teams, *ref) {
				*ref = ""
				nulled++
			}
		}
		var missing []string
		for _, id := range []string{item.PasserID, item.ReceiverID, item.RusherID} {
			if !refs.has(refs.players, id) && !slices.Contains(missing, id) {
				missing = append(missing, id)
			}
		}
		return item, nulled, missing, nil
	}
	return nil, 0, nil, fmt.Errorf("record %T does not belong to kind %s", record, kind)
}

func upsertRecord(ctx context.Context, tx ingest.Tx, record ingest.Record) (ingest.Outcome, error) {
	switch item := record.(type) {
	case team.Team:
		return tx.UpsertTeam(ctx, item)
	case game.Game:
		return tx.UpsertGame(ctx, item)
	case player.Player:
		return tx.UpsertPlayer(ctx, item)
	case play.Play:
		return tx.UpsertPlay(ctx, item)
	}
	return 0, fmt.Errorf("unsupported record %T", record)
}

func naturalKey(record ingest.Record) string {
	if record == nil {
		return "<nil>"
	}
	return record.NaturalKey()
}
