package database_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/adapters/database"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

type mockPostgresClient struct {
	db *sql.DB
}

func (c *mockPostgresClient) DB() *sql.DB     { return c.db }
func (c *mockPostgresClient) Dialect() string { return "postgres" }
func (c *mockPostgresClient) Close() error    { return c.db.Close() }

func newPostgresStore(t *testing.T) (*database.SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// one table per kind, one index per filtered field, plus liked_places
	statements := len(entities.AllKinds()) + 9 + 1
	for i := 0; i < statements; i++ {
		mock.ExpectExec("CREATE (TABLE|INDEX) IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	store, err := database.NewSQLStore(context.Background(), &mockPostgresClient{db: db}, nil)
	require.NoError(t, err)
	return store, mock
}

func TestSQLStorePostgres_GetNotFound(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "data" FROM "places" WHERE ("id" = $1)`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	_, err := store.Get(context.Background(), entities.KindPlace, "missing")
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorePostgres_InsertConflict(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.Insert(context.Background(), entities.KindReview, repositories.Record{ID: "r1", Data: json.RawMessage(`{}`)})
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorePostgres_MutateLocksRow(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "users" WHERE ("id" = $1) FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"loyaltyPoints":1}`))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "data"=$1 WHERE ("id" = $2)`)).
		WithArgs(`{"loyaltyPoints":2}`, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := store.Mutate(context.Background(), entities.KindUser, "u1", func(json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`{"loyaltyPoints":2}`), nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"loyaltyPoints":2}`, string(rec.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorePostgres_ListByFieldUsesJSONB(t *testing.T) {
	store, mock := newPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`data::jsonb ->> 'placeId'`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow("r1", `{"rating":5}`).
			AddRow("r2", `{"rating":3}`))

	records, err := store.ListByField(context.Background(), entities.KindReview, "placeId", "p1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
