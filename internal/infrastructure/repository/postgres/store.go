package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-stats/internal/domain/game"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/play"
	"github.com/riskibarqy/gridiron-stats/internal/domain/player"
	"github.com/riskibarqy/gridiron-stats/internal/domain/team"
	qb "github.com/riskibarqy/gridiron-stats/internal/platform/querybuilder"
)

const recordSavepoint = "record_upsert"

type upsertTarget struct {
	table     string
	keys      []string
	overwrite []string
}

var (
	teamUpsert = upsertTarget{table: "teams", keys: []string{"team_abbr"}, overwrite: []string{"is_active"}}
	gameUpsert = upsertTarget{table: "games", keys: []string{"game_id"}}
	// Player team references are nulled by the loader when unknown, so a
	// NULL here must not clear the stored team.
	playerUpsert = upsertTarget{table: "players", keys: []string{"player_id"}}
	playUpsert   = upsertTarget{table: "plays", keys: []string{"game_id", "play_id"}, overwrite: playFlagColumns}
)

var naturalKeyColumns = map[ingest.Kind]struct {
	table  string
	column string
}{
	ingest.KindTeam:   {table: "teams", column: "team_abbr"},
	ingest.KindGame:   {table: "games", column: "game_id"},
	ingest.KindPlayer: {table: "players", column: "player_id"},
	ingest.KindPlay:   {table: "plays", column: "game_id || '/' || play_id"},
}

// buildUpsert renders an insert that merges into an existing row: columns the
// incoming model leaves NULL keep their stored value, overwrite columns always
// take the incoming value. The single returned column reports whether the row
// was freshly inserted.
func buildUpsert(target upsertTarget, model any) (string, []any, error) {
	builder, err := qb.InsertFromModel(target.table, model)
	if err != nil {
		return "", nil, err
	}
	columns, err := qb.Columns(model)
	if err != nil {
		return "", nil, err
	}

	skip := make(map[string]struct{}, len(target.keys))
	for _, key := range target.keys {
		skip[key] = struct{}{}
	}
	overwrite := make(map[string]struct{}, len(target.overwrite))
	for _, column := range target.overwrite {
		overwrite[column] = struct{}{}
	}

	sets := make([]qb.ConflictSet, 0, len(columns)+1)
	for _, column := range columns {
		if _, ok := skip[column]; ok {
			continue
		}
		if _, ok := overwrite[column]; ok {
			sets = append(sets, qb.Overwrite(column))
			continue
		}
		sets = append(sets, qb.Coalesce(target.table, column))
	}
	sets = append(sets, qb.SetRaw("updated_at", "NOW()"))

	return builder.
		OnConflict(target.keys...).
		DoUpdate(sets...).
		Suffix("RETURNING (xmax = 0) AS inserted").
		ToSQL()
}

// Store implements ingest.Store over a Postgres pool. Every session pins one
// pooled connection.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Acquire(ctx context.Context) (ingest.Session, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &session{conn: conn}, nil
}

type session struct {
	conn *sqlx.Conn
}

func (s *session) Begin(ctx context.Context) (ingest.Tx, error) {
	sqlTx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &tx{tx: sqlTx}, nil
}

func (s *session) NaturalKeys(ctx context.Context, kind ingest.Kind) (map[string]struct{}, error) {
	target, ok := naturalKeyColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	query, args, err := qb.Select(target.column).From(target.table).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s keys query: %w", kind, err)
	}

	var keys []string
	if err := s.conn.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("select %s keys: %w", kind, err)
	}

	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out, nil
}

func (s *session) Close() error {
	return s.conn.Close()
}

// tx wraps each upsert in a savepoint so a refused record leaves the chunk
// transaction usable.
type tx struct {
	tx *sqlx.Tx
}

func (t *tx) UpsertTeam(ctx context.Context, item team.Team) (ingest.Outcome, error) {
	return t.upsert(ctx, teamUpsert, item.NaturalKey(), teamModel(item))
}

func (t *tx) UpsertGame(ctx context.Context, item game.Game) (ingest.Outcome, error) {
	return t.upsert(ctx, gameUpsert, item.NaturalKey(), gameModel(item))
}

func (t *tx) UpsertPlayer(ctx context.Context, item player.Player) (ingest.Outcome, error) {
	return t.upsert(ctx, playerUpsert, item.NaturalKey(), playerModel(item))
}

func (t *tx) UpsertPlay(ctx context.Context, item play.Play) (ingest.Outcome, error) {
	return t.upsert(ctx, playUpsert, item.NaturalKey(), playModel(item))
}

func (t *tx) Commit() error {
	return t.tx.Commit()
}

func (t *tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *tx) upsert(ctx context.Context, target upsertTarget, key string, model any) (ingest.Outcome, error) {
	query, args, err := buildUpsert(target, model)
	if err != nil {
		return 0, fmt.Errorf("build upsert %s query: %w", target.table, err)
	}

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+recordSavepoint); err != nil {
		return 0, fmt.Errorf("savepoint before %s %s: %w", target.table, key, err)
	}

	var inserted bool
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+recordSavepoint); rbErr != nil {
			return 0, fmt.Errorf("upsert %s %s: %w (rollback to savepoint: %v)", target.table, key, err, rbErr)
		}
		if isConstraintViolation(err) {
			return 0, fmt.Errorf("upsert %s %s rejected by constraint: %w", target.table, key, err)
		}
		return 0, fmt.Errorf("upsert %s %s: %w", target.table, key, err)
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+recordSavepoint); err != nil {
		return 0, fmt.Errorf("release savepoint after %s %s: %w", target.table, key, err)
	}

	if inserted {
		return ingest.OutcomeInserted, nil
	}
	return ingest.OutcomeUpdated, nil
}
