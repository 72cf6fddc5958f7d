package repository

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/classboard/classboard-api/internal/models"
)

// MemoryIdentityStore keeps signup identities in process memory. It is the
// baseline backend: restarting the process discards all identities while
// previously issued tokens stay valid until they expire, since tokens are
// self-contained and never checked against the store after issuance.
type MemoryIdentityStore struct {
	mu         sync.RWMutex
	identities map[string]models.Identity
}

// NewMemoryIdentityStore constructs an empty in-memory identity store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{identities: make(map[string]models.Identity)}
}

// FindByEmail looks up an identity by email, case-insensitively. Returns
// mongo.ErrNoDocuments when absent so callers treat both backends uniformly.
func (s *MemoryIdentityStore) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[strings.ToLower(email)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := identity
	return &copied, nil
}

// Create stores a new identity, rejecting case-insensitive email duplicates.
func (s *MemoryIdentityStore) Create(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(identity.Email)
	if _, exists := s.identities[key]; exists {
		return ErrDuplicateIdentity
	}
	s.identities[key] = *identity
	return nil
}
