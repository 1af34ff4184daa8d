package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/codec"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	createCollectionsTable = `
		CREATE TABLE IF NOT EXISTS catalog_collections (
			name       TEXT PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	upsertCollection = `
		INSERT INTO catalog_collections (name, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`

	selectCollections = `
		SELECT name, document
		FROM catalog_collections
		WHERE name = ANY($1)
	`
)

// PostgresStore keeps one JSONB row per collection.
type PostgresStore struct {
	db  DB
	now func() time.Time
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the collections table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createCollectionsTable); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "create catalog_collections")
	}
	return nil
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := s.db.Query(ctx, selectCollections, codec.Collections)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "query catalog_collections")
	}
	defer rows.Close()

	var (
		enc   codec.EncodedCollections
		found bool
	)
	for rows.Next() {
		var (
			name string
			doc  []byte
		)
		if err := rows.Scan(&name, &doc); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "scan catalog_collections")
		}
		enc.Set(name, doc)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "read catalog_collections")
	}
	if !found {
		return nil, apperrors.NotFound("catalog", "catalog_collections")
	}
	return codec.DecodeCollections(enc)
}

// Save implements Store. The three rows are upserted in one transaction.
func (s *PostgresStore) Save(ctx context.Context, c *catalog.Catalog) error {
	enc, err := codec.EncodeCollections(c)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "begin transaction")
	}
	defer tx.Rollback(ctx)

	now := s.now()
	for _, name := range codec.Collections {
		if _, err := tx.Exec(ctx, upsertCollection, name, enc.Get(name), now); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeStorage, "upsert "+name)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "commit transaction")
	}
	return nil
}

// Describe implements Store.
func (s *PostgresStore) Describe() string {
	return "postgres:catalog_collections"
}
