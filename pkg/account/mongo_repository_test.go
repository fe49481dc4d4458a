package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func setupTestMongo(t *testing.T) *mongo.Database {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	client, err := mongo.Connect(options.Client().ApplyURI(endpoint))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	require.NoError(t, client.Ping(ctx, nil))

	return client.Database("account_test")
}

func TestMongoRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mongo container test in short mode")
	}

	db := setupTestMongo(t)

	testRepositoryContract(t, func(t *testing.T) Repository {
		repo := NewMongoRepository(db.Collection("accounts_" + uuid.NewString()))
		require.NoError(t, repo.EnsureIndexes(context.Background()))
		return repo
	})
}

func TestMongoRepository_UniqueTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mongo container test in short mode")
	}

	ctx := context.Background()
	repo := NewMongoRepository(setupTestMongo(t).Collection("accounts"))
	require.NoError(t, repo.EnsureIndexes(ctx))

	a, err := repo.Create(ctx, newTestAccount("a@example.com"))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newTestAccount("b@example.com"))
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour)
	_, err = repo.Update(ctx, a.ID, AccountUpdate{ResetToken: &TokenUpdate{Token: "same", ExpiresAt: exp}})
	require.NoError(t, err)
	_, err = repo.Update(ctx, b.ID, AccountUpdate{ResetToken: &TokenUpdate{Token: "same", ExpiresAt: exp}})
	assert.Error(t, err)

	// accounts without tokens do not collide
	_, err = repo.Create(ctx, newTestAccount("c@example.com"))
	assert.NoError(t, err)
}

func TestLiveTokenFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	filter := liveTokenFilter("reset_token", "abc", now)
	assert.Equal(t, "abc", filter["reset_token"])
	assert.Equal(t, bson.M{"$gt": now.UTC()}, filter["reset_token_expiry"])
}

func TestAccountDocument(t *testing.T) {
	t.Run("KeepsTokenState", func(t *testing.T) {
		tok := "tok"
		exp := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
		a := Account{ID: uuid.New(), Email: "doc@example.com", VerifyToken: &tok, VerifyTokenExpiry: &exp}

		back, err := toDocument(a).account()
		require.NoError(t, err)
		assert.Equal(t, a.ID, back.ID)
		assert.True(t, back.HasLiveVerifyToken(exp.Add(-time.Second)))
		assert.False(t, back.HasLiveResetToken(exp.Add(-time.Second)))
	})

	t.Run("RejectsMalformedID", func(t *testing.T) {
		_, err := accountDocument{ID: "not-a-uuid"}.account()
		assert.ErrorContains(t, err, "invalid account id")
	})
}
