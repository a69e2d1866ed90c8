package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediafolder/models"
	"mediafolder/store"
)

const currentSchemaVersion = 1

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type txKey struct{}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements store.Store on a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// New opens (creating if needed) the database at path and migrates it.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection also keeps :memory: databases intact.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *Store) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS media_folder_configurations (
			id TEXT PRIMARY KEY NOT NULL,
			create_thumbnails INTEGER NOT NULL DEFAULT 1,
			keep_aspect_ratio INTEGER NOT NULL DEFAULT 1,
			thumbnail_quality INTEGER NOT NULL DEFAULT 80 CHECK (thumbnail_quality BETWEEN 0 AND 100),
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS media_folders (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			parent_id TEXT,
			use_parent_configuration INTEGER NOT NULL DEFAULT 0,
			configuration_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT,
			FOREIGN KEY (parent_id) REFERENCES media_folders(id),
			FOREIGN KEY (configuration_id) REFERENCES media_folder_configurations(id)
		);

		CREATE INDEX IF NOT EXISTS idx_media_folders_parent_id ON media_folders(parent_id);
		CREATE INDEX IF NOT EXISTS idx_media_folders_configuration_id ON media_folders(configuration_id);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// Transaction runs fn inside a SQL transaction. Nested calls reuse the outer one.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, parent_id, use_parent_configuration, configuration_id, created_at, updated_at
		FROM media_folders
		WHERE id = ?
	`, id)

	folder, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *Store) PutFolder(ctx context.Context, folder *models.Folder) error {
	var updatedAt *string
	if folder.UpdatedAt != nil {
		v := formatTime(*folder.UpdatedAt)
		updatedAt = &v
	}

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO media_folders (id, name, parent_id, use_parent_configuration, configuration_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			parent_id = excluded.parent_id,
			use_parent_configuration = excluded.use_parent_configuration,
			configuration_id = excluded.configuration_id,
			updated_at = excluded.updated_at
	`, folder.ID, folder.Name, folder.ParentID, boolToInt(folder.UseParentConfiguration),
		folder.ConfigurationID, formatTime(folder.CreatedAt), updatedAt)
	return translateError(err)
}

func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx, "DELETE FROM media_folders WHERE id = ?", id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

func (s *Store) ListChildFolders(ctx context.Context, parentID *string) ([]models.Folder, error) {
	query := `
		SELECT id, name, parent_id, use_parent_configuration, configuration_id, created_at, updated_at
		FROM media_folders
	`
	var args []any
	if parentID == nil {
		query += " WHERE parent_id IS NULL"
	} else {
		query += " WHERE parent_id = ?"
		args = append(args, *parentID)
	}
	query += " ORDER BY name, id"

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return folders, nil
}

func (s *Store) CountFoldersByConfiguration(ctx context.Context, configurationID string) (int64, error) {
	var count int64
	err := s.conn(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM media_folders WHERE configuration_id = ?", configurationID,
	).Scan(&count)
	return count, err
}

func (s *Store) GetConfiguration(ctx context.Context, id string) (*models.FolderConfiguration, error) {
	var (
		cfg              models.FolderConfiguration
		createThumbnails int
		keepAspectRatio  int
		createdAt        string
	)

	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, create_thumbnails, keep_aspect_ratio, thumbnail_quality, created_at
		FROM media_folder_configurations
		WHERE id = ?
	`, id).Scan(&cfg.ID, &createThumbnails, &keepAspectRatio, &cfg.ThumbnailQuality, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.CreateThumbnails = createThumbnails == 1
	cfg.KeepAspectRatio = keepAspectRatio == 1
	cfg.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return &cfg, nil
}

func (s *Store) PutConfiguration(ctx context.Context, cfg *models.FolderConfiguration) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO media_folder_configurations (id, create_thumbnails, keep_aspect_ratio, thumbnail_quality, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			create_thumbnails = excluded.create_thumbnails,
			keep_aspect_ratio = excluded.keep_aspect_ratio,
			thumbnail_quality = excluded.thumbnail_quality
	`, cfg.ID, boolToInt(cfg.CreateThumbnails), boolToInt(cfg.KeepAspectRatio),
		cfg.ThumbnailQuality, formatTime(cfg.CreatedAt))
	return translateError(err)
}

func (s *Store) DeleteConfiguration(ctx context.Context, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx, "DELETE FROM media_folder_configurations WHERE id = ?", id)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

func (s *Store) DeleteOrphanConfigurations(ctx context.Context, createdBefore time.Time) (int64, error) {
	res, err := s.conn(ctx).ExecContext(ctx, `
		DELETE FROM media_folder_configurations
		WHERE created_at < ?
		AND id NOT IN (SELECT configuration_id FROM media_folders)
	`, formatTime(createdBefore))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(row scanner) (*models.Folder, error) {
	var (
		f         models.Folder
		parentID  sql.NullString
		inherit   int
		createdAt string
		updatedAt sql.NullString
	)

	if err := row.Scan(&f.ID, &f.Name, &parentID, &inherit, &f.ConfigurationID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if parentID.Valid {
		f.ParentID = &parentID.String
	}
	f.UseParentConfiguration = inherit == 1
	f.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	if updatedAt.Valid {
		t, err := time.Parse(timeLayout, updatedAt.String)
		if err == nil {
			f.UpdatedAt = &t
		}
	}

	return &f, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// translateError maps SQLite constraint failures onto store errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
