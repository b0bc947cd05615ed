package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError("get", pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, mapError("insert", &pgconn.PgError{Code: "23505"}), domain.ErrConflict)
	assert.ErrorIs(t, mapError("commit", &pgconn.PgError{Code: "40001"}), domain.ErrConflict)
	assert.ErrorIs(t, mapError("lock", &pgconn.PgError{Code: "40P01"}), domain.ErrConflict)

	other := errors.New("connection reset")
	err := mapError("update", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "tx-1", derefString(nullIfEmpty("tx-1")))
	assert.Equal(t, "", derefString(nil))
}
