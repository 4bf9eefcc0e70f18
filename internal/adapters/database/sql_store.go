package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/repositories"
	"github.com/zatekoja/placesreview/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

const likedPlacesTable = "liked_places"

// SQLClient is satisfied by the postgres and sqlite clients
type SQLClient interface {
	DB() *sql.DB
	Dialect() string
	Close() error
}

// indexedFields are the JSON fields services filter on
var indexedFields = map[entities.Kind][]string{
	entities.KindReview:             {"placeId", "userId"},
	entities.KindQuestion:           {"placeId"},
	entities.KindNotification:       {"userId"},
	entities.KindLoyaltyTransaction: {"userId"},
	entities.KindPlace:              {"ownerId"},
	entities.KindAnnouncement:       {"placeId"},
	entities.KindInquiry:            {"userId"},
	entities.KindSubscription:       {"userId"},
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// SQLStore implements repositories.Store with one JSON-document table per kind
type SQLStore struct {
	client  SQLClient
	db      *goqu.Database
	dialect string
	metrics *observability.Metrics
}

// NewSQLStore creates the store and its tables
func NewSQLStore(ctx context.Context, client SQLClient, metrics *observability.Metrics) (*SQLStore, error) {
	s := &SQLStore{
		client:  client,
		db:      goqu.New(client.Dialect(), client.DB()),
		dialect: client.Dialect(),
		metrics: metrics,
	}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

var _ repositories.Store = (*SQLStore)(nil)

func (s *SQLStore) isPostgres() bool {
	return s.dialect == postgres.Dialect
}

func (s *SQLStore) migrate(ctx context.Context) error {
	seqColumn := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.isPostgres() {
		seqColumn = "seq BIGSERIAL PRIMARY KEY"
	}

	var stmts []string
	for _, kind := range entities.AllKinds() {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s, id TEXT NOT NULL UNIQUE, data TEXT NOT NULL)",
			kind.Table(), seqColumn,
		))
		for _, field := range indexedFields[kind] {
			stmts = append(stmts, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s ((%s))",
				kind.Table(), field, kind.Table(), s.jsonFieldSQL(field),
			))
		}
	}
	stmts = append(stmts, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s, user_id TEXT NOT NULL, place_id TEXT NOT NULL, UNIQUE (user_id, place_id))",
		likedPlacesTable, seqColumn,
	))

	for _, stmt := range stmts {
		if _, err := s.client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewInternalError("failed to migrate entity store", err)
		}
	}
	return nil
}

// jsonFieldSQL extracts a top-level string field from the data column.
// Callers must pass a name matching fieldPattern.
func (s *SQLStore) jsonFieldSQL(field string) string {
	if s.isPostgres() {
		return fmt.Sprintf("data::jsonb ->> '%s'", field)
	}
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

func (s *SQLStore) track(ctx context.Context, op string, kind entities.Kind) func() {
	start := time.Now()
	return func() {
		observability.RecordStoreMetric(ctx, s.metrics, op, string(kind), time.Since(start))
	}
}

func checkKind(kind entities.Kind) error {
	if !kind.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown collection %q", string(kind)))
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// Insert stores a new record
func (s *SQLStore) Insert(ctx context.Context, kind entities.Kind, rec repositories.Record) error {
	defer s.track(ctx, "insert", kind)()
	if err := checkKind(kind); err != nil {
		return err
	}

	query, args, err := s.db.Insert(kind.Table()).
		Rows(goqu.Record{"id": rec.ID, "data": string(rec.Data)}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := s.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("%s %s already exists", kind, rec.ID))
		}
		return apperrors.NewInternalError(fmt.Sprintf("failed to insert into %s", kind), err)
	}
	return nil
}

// Get retrieves one record by id
func (s *SQLStore) Get(ctx context.Context, kind entities.Kind, id string) (*repositories.Record, error) {
	defer s.track(ctx, "get", kind)()
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	query, args, err := s.db.From(kind.Table()).
		Select("data").
		Where(goqu.Ex{"id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var data []byte
	err = s.client.DB().QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", kind, id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to get from %s", kind), err)
	}
	return &repositories.Record{ID: id, Data: data}, nil
}

// List returns every record of a kind in insertion order
func (s *SQLStore) List(ctx context.Context, kind entities.Kind) ([]*repositories.Record, error) {
	defer s.track(ctx, "list", kind)()
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	query, args, err := s.db.From(kind.Table()).
		Select("id", "data").
		Order(goqu.I("seq").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return s.queryRecords(ctx, s.client.DB(), kind, query, args)
}

// ListByField returns records whose top-level JSON field equals value
func (s *SQLStore) ListByField(ctx context.Context, kind entities.Kind, field, value string) ([]*repositories.Record, error) {
	defer s.track(ctx, "list_by_field", kind)()
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	ds, err := s.selectByField(kind, field, value)
	if err != nil {
		return nil, err
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return s.queryRecords(ctx, s.client.DB(), kind, query, args)
}

func (s *SQLStore) selectByField(kind entities.Kind, field, value string) (*goqu.SelectDataset, error) {
	if !fieldPattern.MatchString(field) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid field name %q", field))
	}
	return s.db.From(kind.Table()).
		Select("id", "data").
		Where(goqu.L(s.jsonFieldSQL(field)).Eq(value)).
		Order(goqu.I("seq").Asc()).
		Prepared(true), nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) queryRecords(ctx context.Context, q queryer, kind entities.Kind, query string, args []any) ([]*repositories.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to list %s", kind), err)
	}
	defer rows.Close()

	records := make([]*repositories.Record, 0)
	for rows.Next() {
		rec := &repositories.Record{}
		var data []byte
		if err := rows.Scan(&rec.ID, &data); err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("failed to scan %s", kind), err)
		}
		rec.Data = data
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to iterate %s", kind), err)
	}
	return records, nil
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

func (s *SQLStore) lock(ds *goqu.SelectDataset) *goqu.SelectDataset {
	if s.isPostgres() {
		return ds.ForUpdate(exp.Wait)
	}
	// SQLite runs on a single connection, so the transaction already excludes writers.
	return ds
}

func (s *SQLStore) updateData(ctx context.Context, tx *sql.Tx, kind entities.Kind, id string, data json.RawMessage) error {
	query, args, err := s.db.Update(kind.Table()).
		Set(goqu.Record{"data": string(data)}).
		Where(goqu.Ex{"id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to update %s", kind), err)
	}
	return nil
}

// Mutate performs an atomic read-modify-write of one record
func (s *SQLStore) Mutate(ctx context.Context, kind entities.Kind, id string, fn repositories.MutateFunc) (*repositories.Record, error) {
	defer s.track(ctx, "mutate", kind)()
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var out *repositories.Record
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.lock(s.db.From(kind.Table()).
			Select("data").
			Where(goqu.Ex{"id": id}).
			Prepared(true)).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build query", err)
		}

		var current []byte
		err = tx.QueryRowContext(ctx, query, args...).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", kind, id))
		}
		if err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to read %s", kind), err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := s.updateData(ctx, tx, kind, id, next); err != nil {
			return err
		}
		out = &repositories.Record{ID: id, Data: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MutateWhere rewrites every record matching field=value in one transaction
func (s *SQLStore) MutateWhere(ctx context.Context, kind entities.Kind, field, value string, fn repositories.MutateFunc) (int, error) {
	defer s.track(ctx, "mutate_where", kind)()
	if err := checkKind(kind); err != nil {
		return 0, err
	}

	ds, err := s.selectByField(kind, field, value)
	if err != nil {
		return 0, err
	}

	changed := 0
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.lock(ds).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build query", err)
		}
		// Rows are drained before updating; the SQLite connection cannot interleave them.
		records, err := s.queryRecords(ctx, tx, kind, query, args)
		if err != nil {
			return err
		}
		for _, rec := range records {
			next, err := fn(rec.Data)
			if errors.Is(err, repositories.ErrSkip) {
				continue
			}
			if err != nil {
				return err
			}
			if err := s.updateData(ctx, tx, kind, rec.ID, next); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Reset clears every collection and the likes relation in one transaction
func (s *SQLStore) Reset(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		tables := []string{likedPlacesTable}
		for _, kind := range entities.AllKinds() {
			tables = append(tables, kind.Table())
		}
		for _, table := range tables {
			query, args, err := s.db.Delete(table).ToSQL()
			if err != nil {
				return apperrors.NewInternalError("failed to build delete query", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return apperrors.NewInternalError("failed to clear "+table, err)
			}
		}
		return nil
	})
}

// Close closes the underlying client
func (s *SQLStore) Close() error {
	return s.client.Close()
}

// Like adds the (user, place) pair and reports whether it was new
func (s *SQLStore) Like(ctx context.Context, userID, placeID string) (bool, error) {
	defer s.track(ctx, "like", entities.KindPlace)()

	added := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.likeExists(ctx, tx, userID, placeID)
		if err != nil || exists {
			return err
		}
		query, args, err := s.db.Insert(likedPlacesTable).
			Rows(goqu.Record{"user_id": userID, "place_id": placeID}).
			Prepared(true).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to like place", err)
		}
		added = true
		return nil
	})
	return added, err
}

// Unlike removes the pair and reports whether it existed
func (s *SQLStore) Unlike(ctx context.Context, userID, placeID string) (bool, error) {
	defer s.track(ctx, "unlike", entities.KindPlace)()

	query, args, err := s.db.Delete(likedPlacesTable).
		Where(goqu.Ex{"user_id": userID, "place_id": placeID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build delete query", err)
	}
	result, err := s.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.NewInternalError("failed to unlike place", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return n > 0, nil
}

// IsLiked reports whether the user liked the place
func (s *SQLStore) IsLiked(ctx context.Context, userID, placeID string) (bool, error) {
	return s.likeExists(ctx, s.client.DB(), userID, placeID)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) likeExists(ctx context.Context, q rowQueryer, userID, placeID string) (bool, error) {
	query, args, err := s.db.From(likedPlacesTable).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"user_id": userID, "place_id": placeID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}
	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check like", err)
	}
	return count > 0, nil
}

// LikedPlaces lists the places a user liked, oldest first
func (s *SQLStore) LikedPlaces(ctx context.Context, userID string) ([]string, error) {
	return s.likeColumn(ctx, "place_id", goqu.Ex{"user_id": userID})
}

// PlaceLikers lists the users who liked a place, oldest first
func (s *SQLStore) PlaceLikers(ctx context.Context, placeID string) ([]string, error) {
	return s.likeColumn(ctx, "user_id", goqu.Ex{"place_id": placeID})
}

func (s *SQLStore) likeColumn(ctx context.Context, column string, where goqu.Ex) ([]string, error) {
	defer s.track(ctx, "likes", entities.KindPlace)()

	query, args, err := s.db.From(likedPlacesTable).
		Select(column).
		Where(where).
		Order(goqu.I("seq").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list likes", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewInternalError("failed to scan like", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate likes", err)
	}
	return ids, nil
}
