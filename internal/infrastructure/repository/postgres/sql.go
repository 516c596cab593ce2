package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	qb "github.com/riskibarqy/gridiron-stats/internal/platform/querybuilder"
)

const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqNotNullViolation    = "23502"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isConstraintViolation reports a row-level rejection by the database, as
// opposed to a broken connection or transaction.
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pqForeignKeyViolation, pqCheckViolation, pqNotNullViolation:
		return true
	}
	return pqErr.Code.Class() == "23"
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}

func modelColumns(model any) []string {
	columns, err := qb.Columns(model)
	if err != nil {
		panic(fmt.Sprintf("postgres: columns of %T: %v", model, err))
	}
	return columns
}
