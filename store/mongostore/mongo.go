package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediafolder/models"
	"mediafolder/store"
)

const (
	folderCollection        = "media_folders"
	configurationCollection = "media_folder_configurations"
)

// Store is the MongoDB implementation of store.Store. Transactions need the
// server to run as a replica set.
type Store struct {
	client         *mongo.Client
	folders        *mongo.Collection
	configurations *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and returns a Store on database dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return New(client.Database(dbName)), nil
}

// New wraps an already connected database.
func New(db *mongo.Database) *Store {
	return &Store{
		client:         db.Client(),
		folders:        db.Collection(folderCollection),
		configurations: db.Collection(configurationCollection),
	}
}

// EnsureIndexes creates the lookup indexes used by child listing and
// configuration reference counting.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.folders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "configuration_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create folder indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Transaction runs fn in a multi-document transaction. The driver retries fn
// on transient transaction errors, so fn must be safe to run more than once.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}

	_, err = session.WithTransaction(ctx, callback)
	return err
}

func (s *Store) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var folder models.Folder
	err := s.folders.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find folder: %w", err)
	}
	return &folder, nil
}

func (s *Store) PutFolder(ctx context.Context, folder *models.Folder) error {
	_, err := s.folders.ReplaceOne(ctx, bson.M{"_id": folder.ID}, folder, options.Replace().SetUpsert(true))
	return translateError(err)
}

func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	result, err := s.folders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListChildFolders(ctx context.Context, parentID *string) ([]models.Folder, error) {
	filter := bson.M{"parent_id": nil}
	if parentID != nil {
		filter["parent_id"] = *parentID
	}

	cursor, err := s.folders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer cursor.Close(ctx)

	folders := []models.Folder{}
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}
	return folders, nil
}

func (s *Store) CountFoldersByConfiguration(ctx context.Context, configurationID string) (int64, error) {
	count, err := s.folders.CountDocuments(ctx, bson.M{"configuration_id": configurationID})
	if err != nil {
		return 0, fmt.Errorf("failed to count folders: %w", err)
	}
	return count, nil
}

func (s *Store) GetConfiguration(ctx context.Context, id string) (*models.FolderConfiguration, error) {
	var cfg models.FolderConfiguration
	err := s.configurations.FindOne(ctx, bson.M{"_id": id}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find configuration: %w", err)
	}
	return &cfg, nil
}

func (s *Store) PutConfiguration(ctx context.Context, cfg *models.FolderConfiguration) error {
	_, err := s.configurations.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, cfg, options.Replace().SetUpsert(true))
	return translateError(err)
}

func (s *Store) DeleteConfiguration(ctx context.Context, id string) error {
	result, err := s.configurations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteOrphanConfigurations(ctx context.Context, createdBefore time.Time) (int64, error) {
	var deleted int64

	err := s.Transaction(ctx, func(ctx context.Context) error {
		referenced, err := s.folders.Distinct(ctx, "configuration_id", bson.M{})
		if err != nil {
			return fmt.Errorf("failed to collect referenced configurations: %w", err)
		}

		result, err := s.configurations.DeleteMany(ctx, bson.M{
			"_id":        bson.M{"$nin": referenced},
			"created_at": bson.M{"$lt": createdBefore},
		})
		if err != nil {
			return fmt.Errorf("failed to delete orphan configurations: %w", err)
		}

		deleted = result.DeletedCount
		return nil
	})

	return deleted, err
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}
