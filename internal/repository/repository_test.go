package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/listen-stream/catalog/internal/catalog"
	"github.com/listen-stream/catalog/internal/codec"
	"github.com/listen-stream/catalog/internal/domain"
	apperrors "github.com/listen-stream/catalog/pkg/errors"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	album, err := domain.NewAlbum("Jar Of Flies", "Alice In Chains", 1994, "Grunge", []domain.Song{
		domain.NewSong("Rotten Apple", "Alice In Chains", "Columbia", "", "", "Grunge", 418),
		domain.NewExplicitSong("Nutshell", "Alice In Chains", "Columbia", "", "", "Grunge", 259),
	})
	require.NoError(t, err)
	require.NoError(t, c.AddAlbum(album))
	require.NoError(t, c.AddUser(&domain.User{Name: "layne", Plan: domain.PlanPremiumTop, Points: 12.5}))
	_, err = c.CreatePlaylist("layne", "mix", "late night", domain.VisibilityPublic, album.Tracks.Songs())
	require.NoError(t, err)
	return c
}

func assertSameCatalog(t *testing.T, want, got *catalog.Catalog) {
	t.Helper()
	assert.Equal(t, want.Albums(), got.Albums())
	assert.Equal(t, want.Users(), got.Users())
	assert.Equal(t, want.Playlists(), got.Playlists())
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	for _, layout := range []codec.Layout{codec.LayoutFile, codec.LayoutDirectory} {
		t.Run(string(layout), func(t *testing.T) {
			store := NewFileStore(filepath.Join(t.TempDir(), "catalog"), layout)

			_, err := store.Load(ctx)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			c := sampleCatalog(t)
			require.NoError(t, store.Save(ctx, c))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assertSameCatalog(t, c, got)
			assert.Contains(t, store.Describe(), string(layout))
		})
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewFileStore(filepath.Join(t.TempDir(), "catalog.json"), "")
	assert.ErrorIs(t, store.Save(ctx, catalog.New()), context.Canceled)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	c := sampleCatalog(t)
	require.NoError(t, store.Save(ctx, c))

	for _, name := range codec.Collections {
		assert.True(t, mr.Exists("ls:catalog:"+name), name)
	}

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameCatalog(t, c, got)
	assert.Equal(t, "redis:ls:catalog:*", store.Describe())
}

func TestRedisStore_PartialKeys(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("ls:catalog:users", `{"u": {"name": "u", "history": []}}`))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.HasUser("u"))
	a, _, p := got.Len()
	assert.Zero(t, a+p)
}

func TestRedisStore_Malformed(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("ls:catalog:albums", `{"Dirt": {"title": "Facelift"}}`))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrDecode)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisStore(client, "")
	mr.Close()

	err = store.Save(context.Background(), catalog.New())
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS catalog_collections").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	store := NewPostgresStore(mock)
	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	for _, name := range codec.Collections {
		mock.ExpectExec("INSERT INTO catalog_collections").
			WithArgs(name, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	store := NewPostgresStore(mock)
	require.NoError(t, store.Save(context.Background(), sampleCatalog(t)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO catalog_collections").
		WithArgs(codec.CollectionAlbums, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := NewPostgresStore(mock)
	err = store.Save(context.Background(), sampleCatalog(t))
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := sampleCatalog(t)
	enc, err := codec.EncodeCollections(c)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"name", "document"})
	for _, name := range codec.Collections {
		rows.AddRow(name, enc.Get(name))
	}
	mock.ExpectQuery("FROM catalog_collections").
		WithArgs(codec.Collections).
		WillReturnRows(rows)

	store := NewPostgresStore(mock)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assertSameCatalog(t, c, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM catalog_collections").
		WithArgs(codec.Collections).
		WillReturnRows(pgxmock.NewRows([]string{"name", "document"}))

	_, err = NewPostgresStore(mock).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgresStore_LoadQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM catalog_collections").
		WithArgs(codec.Collections).
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresStore(mock).Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
