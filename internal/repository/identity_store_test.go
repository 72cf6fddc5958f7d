package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/classboard/classboard-api/internal/models"
)

func TestMemoryIdentityStoreRoundTrip(t *testing.T) {
	store := NewMemoryIdentityStore()
	identity := &models.Identity{ID: "id-1", Email: "User@Example.com", PasswordHash: "hash", CreatedAt: time.Now()}

	require.NoError(t, store.Create(context.Background(), identity))

	found, err := store.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, found.ID)
	assert.Equal(t, identity.Email, found.Email)
}

func TestMemoryIdentityStoreMissingEmail(t *testing.T) {
	store := NewMemoryIdentityStore()

	_, err := store.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestMemoryIdentityStoreRejectsDuplicateEmail(t *testing.T) {
	store := NewMemoryIdentityStore()
	require.NoError(t, store.Create(context.Background(), &models.Identity{ID: "a", Email: "user@example.com"}))

	err := store.Create(context.Background(), &models.Identity{ID: "b", Email: "USER@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestMemoryIdentityStoreReturnsCopy(t *testing.T) {
	store := NewMemoryIdentityStore()
	require.NoError(t, store.Create(context.Background(), &models.Identity{ID: "a", Email: "user@example.com", PasswordHash: "hash"}))

	found, err := store.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	found.PasswordHash = "tampered"

	again, err := store.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", again.PasswordHash)
}
