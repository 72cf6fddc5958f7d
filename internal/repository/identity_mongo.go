package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/classboard/classboard-api/internal/models"
)

// ErrDuplicateIdentity is returned when an identity with the same email
// already exists, regardless of backend.
var ErrDuplicateIdentity = errors.New("identity email already exists")

// MongoIdentityStore persists signup identities in the identities collection.
// Selected via IDENTITY_BACKEND=mongo; identities survive process restarts.
type MongoIdentityStore struct {
	col      *mongo.Collection
	observer QueryObserver
}

// NewMongoIdentityStore constructs a durable identity store.
func NewMongoIdentityStore(db *mongo.Database, observer QueryObserver) *MongoIdentityStore {
	return &MongoIdentityStore{col: db.Collection(models.IdentityCollection), observer: observer}
}

// FindByEmail looks up an identity by email, case-insensitively.
func (s *MongoIdentityStore) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	defer s.observe("identities.find_by_email", time.Now())

	var identity models.Identity
	if err := s.col.FindOne(ctx, bson.M{"email": exactInsensitivePattern(email)}).Decode(&identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Create stores a new identity, rejecting case-insensitive email duplicates.
func (s *MongoIdentityStore) Create(ctx context.Context, identity *models.Identity) error {
	defer s.observe("identities.create", time.Now())

	err := s.col.FindOne(ctx, bson.M{"email": exactInsensitivePattern(identity.Email)}).Err()
	if err == nil {
		return ErrDuplicateIdentity
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("check identity email: %w", err)
	}

	if _, err := s.col.InsertOne(ctx, identity); err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *MongoIdentityStore) observe(label string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveDBQuery(label, time.Since(start))
	}
}
