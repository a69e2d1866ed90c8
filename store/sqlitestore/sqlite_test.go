package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediafolder/models"
	"mediafolder/store"
	"mediafolder/store/sqlitestore"
	"mediafolder/store/storetest"
)

func newTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()

	s, err := sqlitestore.New(filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "media.db")

	s, err := sqlitestore.New(path)
	require.NoError(t, err)
	folder := storetest.SeedFolder(t, s, "kept", nil)
	require.NoError(t, s.Close(context.Background()))

	reopened, err := sqlitestore.New(path)
	require.NoError(t, err)
	defer reopened.Close(context.Background())

	got, err := reopened.GetFolder(context.Background(), folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
	assert.Equal(t, path, reopened.Path())
}

func TestPutFolder_UnknownConfigurationIsRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.PutFolder(context.Background(), &models.Folder{
		ID:              models.NewID(),
		Name:            "dangling",
		ConfigurationID: models.NewID(),
		CreatedAt:       time.Now(),
	})

	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestDeleteFolder_WithChildrenIsRejected(t *testing.T) {
	s := newTestStore(t)
	parent := storetest.SeedFolder(t, s, "parent", nil)
	storetest.SeedFolder(t, s, "child", &parent.ID)

	err := s.DeleteFolder(context.Background(), parent.ID)

	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestTransaction_Nested(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	folder := storetest.SeedFolder(t, s, "folder", nil)

	err := s.Transaction(ctx, func(ctx context.Context) error {
		return s.Transaction(ctx, func(ctx context.Context) error {
			return s.DeleteFolder(ctx, folder.ID)
		})
	})
	require.NoError(t, err)

	_, err = s.GetFolder(ctx, folder.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNew_InMemory(t *testing.T) {
	s, err := sqlitestore.New(":memory:")
	require.NoError(t, err)
	defer s.Close(context.Background())

	require.NoError(t, s.Ping(context.Background()))
	storetest.SeedFolder(t, s, "mem", nil)

	roots, err := s.ListChildFolders(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}
