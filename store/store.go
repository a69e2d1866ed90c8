// Package store defines the persistence boundary for media folders and their
// configurations. Implementations live in mongostore and sqlitestore.
package store

import (
	"context"
	"errors"
	"time"

	"mediafolder/models"
)

// Errors returned by every Store implementation so callers never depend on
// driver specific error values.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with stored data")
)

// Store persists folders and folder configurations.
//
// Calls made with the context handed to Transaction's callback join that
// transaction; all other calls run on their own.
type Store interface {
	// GetFolder returns ErrNotFound when no folder has the given id.
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	// PutFolder inserts or replaces the folder with folder.ID.
	PutFolder(ctx context.Context, folder *models.Folder) error
	// DeleteFolder returns ErrNotFound when nothing was deleted.
	DeleteFolder(ctx context.Context, id string) error
	// ListChildFolders returns the direct children of parentID ordered by
	// name. A nil parentID lists root folders.
	ListChildFolders(ctx context.Context, parentID *string) ([]models.Folder, error)
	// CountFoldersByConfiguration counts folders referencing configurationID.
	CountFoldersByConfiguration(ctx context.Context, configurationID string) (int64, error)

	GetConfiguration(ctx context.Context, id string) (*models.FolderConfiguration, error)
	PutConfiguration(ctx context.Context, cfg *models.FolderConfiguration) error
	DeleteConfiguration(ctx context.Context, id string) error
	// DeleteOrphanConfigurations removes configurations created before
	// createdBefore that no folder references, returning how many were removed.
	DeleteOrphanConfigurations(ctx context.Context, createdBefore time.Time) (int64, error)

	// Transaction runs fn atomically. If fn returns an error nothing it wrote
	// is persisted.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
