// Package storetest holds the behaviour every store.Store implementation must
// show. Implementation packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediafolder/models"
	"mediafolder/store"
)

// Factory returns an empty store for a single subtest.
type Factory func(t *testing.T) store.Store

var errRollback = errors.New("rollback")

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("GetFolderMissing", func(t *testing.T) { testGetFolderMissing(t, newStore(t)) })
	t.Run("PutAndGetFolder", func(t *testing.T) { testPutAndGetFolder(t, newStore(t)) })
	t.Run("PutFolderReplaces", func(t *testing.T) { testPutFolderReplaces(t, newStore(t)) })
	t.Run("DeleteFolder", func(t *testing.T) { testDeleteFolder(t, newStore(t)) })
	t.Run("ListChildFolders", func(t *testing.T) { testListChildFolders(t, newStore(t)) })
	t.Run("Configurations", func(t *testing.T) { testConfigurations(t, newStore(t)) })
	t.Run("CountFoldersByConfiguration", func(t *testing.T) { testCountFoldersByConfiguration(t, newStore(t)) })
	t.Run("TransactionCommits", func(t *testing.T) { testTransactionCommits(t, newStore(t)) })
	t.Run("TransactionRollsBack", func(t *testing.T) { testTransactionRollsBack(t, newStore(t)) })
	t.Run("DeleteOrphanConfigurations", func(t *testing.T) { testDeleteOrphanConfigurations(t, newStore(t)) })
}

// SeedFolder stores a non-inheriting folder together with its own configuration.
func SeedFolder(t *testing.T, s store.Store, name string, parentID *string) *models.Folder {
	t.Helper()
	ctx := context.Background()

	cfg := models.DefaultFolderConfiguration()
	cfg.ID = models.NewID()
	cfg.CreatedAt = time.Now().UTC()
	require.NoError(t, s.PutConfiguration(ctx, &cfg))

	folder := &models.Folder{
		ID:              models.NewID(),
		Name:            name,
		ParentID:        parentID,
		ConfigurationID: cfg.ID,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, s.PutFolder(ctx, folder))

	return folder
}

func testGetFolderMissing(t *testing.T, s store.Store) {
	_, err := s.GetFolder(context.Background(), models.NewID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetConfiguration(context.Background(), models.NewID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testPutAndGetFolder(t *testing.T, s store.Store) {
	ctx := context.Background()
	parent := SeedFolder(t, s, "parent", nil)
	child := SeedFolder(t, s, "child", &parent.ID)

	got, err := s.GetFolder(ctx, child.ID)
	require.NoError(t, err)

	assert.Equal(t, child.ID, got.ID)
	assert.Equal(t, "child", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)
	assert.Equal(t, child.ConfigurationID, got.ConfigurationID)
	assert.False(t, got.UseParentConfiguration)
	assert.WithinDuration(t, child.CreatedAt, got.CreatedAt, time.Second)
	assert.Nil(t, got.UpdatedAt)

	root, err := s.GetFolder(ctx, parent.ID)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
}

func testPutFolderReplaces(t *testing.T, s store.Store) {
	ctx := context.Background()
	parent := SeedFolder(t, s, "parent", nil)
	folder := SeedFolder(t, s, "folder", &parent.ID)

	now := time.Now().UTC()
	folder.ParentID = nil
	folder.Name = "renamed"
	folder.UpdatedAt = &now
	require.NoError(t, s.PutFolder(ctx, folder))

	got, err := s.GetFolder(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Nil(t, got.ParentID)
	require.NotNil(t, got.UpdatedAt)
	assert.WithinDuration(t, now, *got.UpdatedAt, time.Second)
}

func testDeleteFolder(t *testing.T, s store.Store) {
	ctx := context.Background()
	folder := SeedFolder(t, s, "folder", nil)

	require.NoError(t, s.DeleteFolder(ctx, folder.ID))

	_, err := s.GetFolder(ctx, folder.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteFolder(ctx, folder.ID), store.ErrNotFound)
}

func testListChildFolders(t *testing.T, s store.Store) {
	ctx := context.Background()
	parent := SeedFolder(t, s, "parent", nil)
	SeedFolder(t, s, "b", &parent.ID)
	SeedFolder(t, s, "a", &parent.ID)
	SeedFolder(t, s, "other-root", nil)

	children, err := s.ListChildFolders(ctx, &parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "a", children[0].Name)
	assert.Equal(t, "b", children[1].Name)

	roots, err := s.ListChildFolders(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	empty, err := s.ListChildFolders(ctx, &children[0].ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testConfigurations(t *testing.T, s store.Store) {
	ctx := context.Background()
	cfg := &models.FolderConfiguration{
		ID:               models.NewID(),
		CreateThumbnails: true,
		KeepAspectRatio:  false,
		ThumbnailQuality: 65,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.PutConfiguration(ctx, cfg))

	got, err := s.GetConfiguration(ctx, cfg.ID)
	require.NoError(t, err)
	assert.True(t, got.CreateThumbnails)
	assert.False(t, got.KeepAspectRatio)
	assert.Equal(t, 65, got.ThumbnailQuality)

	require.NoError(t, s.DeleteConfiguration(ctx, cfg.ID))
	_, err = s.GetConfiguration(ctx, cfg.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteConfiguration(ctx, cfg.ID), store.ErrNotFound)
}

func testCountFoldersByConfiguration(t *testing.T, s store.Store) {
	ctx := context.Background()
	parent := SeedFolder(t, s, "parent", nil)

	inheriting := &models.Folder{
		ID:                     models.NewID(),
		Name:                   "inheriting",
		ParentID:               &parent.ID,
		UseParentConfiguration: true,
		ConfigurationID:        parent.ConfigurationID,
		CreatedAt:              time.Now().UTC(),
	}
	require.NoError(t, s.PutFolder(ctx, inheriting))

	count, err := s.CountFoldersByConfiguration(ctx, parent.ConfigurationID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = s.CountFoldersByConfiguration(ctx, models.NewID())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testTransactionCommits(t *testing.T, s store.Store) {
	ctx := context.Background()
	folder := SeedFolder(t, s, "folder", nil)

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.DeleteFolder(ctx, folder.ID); err != nil {
			return err
		}
		return s.DeleteConfiguration(ctx, folder.ConfigurationID)
	})
	require.NoError(t, err)

	_, err = s.GetFolder(ctx, folder.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetConfiguration(ctx, folder.ConfigurationID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testTransactionRollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()
	folder := SeedFolder(t, s, "folder", nil)

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.DeleteFolder(ctx, folder.ID); err != nil {
			return err
		}
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)

	got, err := s.GetFolder(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, got.ID)
}

func testDeleteOrphanConfigurations(t *testing.T, s store.Store) {
	ctx := context.Background()
	folder := SeedFolder(t, s, "folder", nil)

	old := &models.FolderConfiguration{
		ID:               models.NewID(),
		ThumbnailQuality: 80,
		CreatedAt:        time.Now().UTC().Add(-time.Hour),
	}
	fresh := &models.FolderConfiguration{
		ID:               models.NewID(),
		ThumbnailQuality: 80,
		CreatedAt:        time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.PutConfiguration(ctx, old))
	require.NoError(t, s.PutConfiguration(ctx, fresh))

	deleted, err := s.DeleteOrphanConfigurations(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = s.GetConfiguration(ctx, old.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetConfiguration(ctx, fresh.ID)
	assert.NoError(t, err, "configurations newer than the cutoff are kept")
	_, err = s.GetConfiguration(ctx, folder.ConfigurationID)
	assert.NoError(t, err, "referenced configurations are kept")
}
