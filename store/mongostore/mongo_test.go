package mongostore_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediafolder/models"
	"mediafolder/services"
	"mediafolder/store"
	"mediafolder/store/mongostore"
	"mediafolder/store/storetest"
)

var testMongoURI string

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		// No Docker available: the integration tests skip themselves.
		fmt.Fprintf(os.Stderr, "failed to start mongodb container: %v\n", err)
		os.Exit(m.Run())
	}

	testMongoURI, err = container.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get mongodb connection string: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate mongodb container: %v\n", err)
	}
	os.Exit(code)
}

func newTestStore(t *testing.T) *mongostore.Store {
	t.Helper()
	if testing.Short() || testMongoURI == "" {
		t.Skip("skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testMongoURI))
	require.NoError(t, err)

	// One database per test keeps subtests independent.
	db := client.Database("mediafolder_" + models.NewID()[:12])
	s := mongostore.New(db)
	require.NoError(t, s.EnsureIndexes(ctx))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = s.Close(context.Background())
	})

	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestConnect_BadURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := mongostore.Connect(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", "mediafolder")
	require.Error(t, err)
}

func TestMediaFolderService_DissolveAndMove(t *testing.T) {
	s := newTestStore(t)
	svc := services.NewMediaFolderService(s, clockwork.NewFakeClock())
	ctx := context.Background()

	create := func(name string, parentID *string, inherit bool) *models.Folder {
		t.Helper()
		folder, err := svc.Create(ctx, services.CreateFolderInput{
			Name:                   name,
			ParentID:               parentID,
			UseParentConfiguration: inherit,
		})
		require.NoError(t, err)
		return folder
	}

	grandparent := create("grandparent", nil, false)
	parent := create("parent", &grandparent.ID, false)
	inheriting := create("inheriting", &parent.ID, true)
	other := create("other", nil, false)

	require.NoError(t, svc.Dissolve(ctx, parent.ID))

	got, err := svc.Get(ctx, inheriting.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, grandparent.ID, *got.ParentID)
	assert.Equal(t, grandparent.ConfigurationID, got.ConfigurationID)

	_, err = svc.Get(ctx, parent.ID)
	assert.ErrorIs(t, err, services.ErrFolderNotFound)
	_, err = svc.GetConfiguration(ctx, parent.ConfigurationID)
	assert.ErrorIs(t, err, services.ErrConfigurationNotFound)

	require.NoError(t, svc.Move(ctx, inheriting.ID, &other.ID))
	cfg, err := svc.GetFolderConfiguration(ctx, inheriting.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ConfigurationID, cfg.ID)

	assert.ErrorIs(t, svc.Move(ctx, other.ID, &inheriting.ID), services.ErrInvalidMove)
	assert.ErrorIs(t, svc.Dissolve(ctx, parent.ID), services.ErrFolderNotFound)
}
