package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/repository"
	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type mockIdentityStore struct {
	identities map[string]models.Identity
	findErr    error
	createErr  error
}

func newMockIdentityStore() *mockIdentityStore {
	return &mockIdentityStore{identities: make(map[string]models.Identity)}
}

func (m *mockIdentityStore) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	identity, ok := m.identities[strings.ToLower(email)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := identity
	return &copied, nil
}

func (m *mockIdentityStore) Create(ctx context.Context, identity *models.Identity) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := strings.ToLower(identity.Email)
	if _, exists := m.identities[key]; exists {
		return repository.ErrDuplicateIdentity
	}
	m.identities[key] = *identity
	return nil
}

func newTestAuthService(store IdentityStore) *AuthService {
	return NewAuthService(store, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TokenExpiry: time.Hour})
}

func TestAuthServiceSignup(t *testing.T) {
	store := newMockIdentityStore()
	svc := newTestAuthService(store)

	payload, err := svc.Signup(context.Background(), SignupRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Token)
	assert.NotEmpty(t, payload.Identity.ID)
	assert.Equal(t, "user@example.com", payload.Identity.Email)

	stored := store.identities["user@example.com"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password")))
}

func TestAuthServiceSignupDuplicateEmail(t *testing.T) {
	store := newMockIdentityStore()
	svc := newTestAuthService(store)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), SignupRequest{Email: "USER@example.com", Password: "password"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestAuthServiceSignupRejectsBadPayload(t *testing.T) {
	svc := newTestAuthService(newMockIdentityStore())

	cases := []SignupRequest{
		{Email: "not-an-email", Password: "password"},
		{Email: "user@example.com", Password: "short"},
		{Email: "", Password: "password"},
	}
	for _, req := range cases {
		_, err := svc.Signup(context.Background(), req)
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
}

func TestAuthServiceLogin(t *testing.T) {
	store := newMockIdentityStore()
	svc := newTestAuthService(store)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	payload, err := svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "user@example.com", payload.Identity.Email)
}

func TestAuthServiceLoginEmailCaseInsensitive(t *testing.T) {
	store := newMockIdentityStore()
	svc := newTestAuthService(store)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	payload, err := svc.Login(context.Background(), LoginRequest{Email: "A@B.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Token)

	claims := svc.ResolveToken(payload.Token)
	require.NotNil(t, claims)
	assert.Equal(t, payload.Identity.ID, claims.Subject)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(newMockIdentityStore())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	store := newMockIdentityStore()
	svc := newTestAuthService(store)

	_, err := svc.Signup(context.Background(), SignupRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(newMockIdentityStore())
	identity := &models.Identity{ID: "id-1", Email: "user@example.com"}

	token, err := svc.IssueToken(identity)
	require.NoError(t, err)

	claims := svc.ResolveToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "id-1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestAuthServiceResolveTokenStripsBearerPrefix(t *testing.T) {
	svc := newTestAuthService(newMockIdentityStore())

	token, err := svc.IssueToken(&models.Identity{ID: "id-1", Email: "user@example.com"})
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + token, "bearer " + token, token} {
		claims := svc.ResolveToken(header)
		require.NotNil(t, claims, "header %q", header)
		assert.Equal(t, "id-1", claims.Subject)
	}
}

func TestAuthServiceResolveTokenFailuresCollapseToNil(t *testing.T) {
	svc := newTestAuthService(newMockIdentityStore())

	otherSecret := NewAuthService(newMockIdentityStore(), validator.New(), zap.NewNop(), AuthConfig{Secret: "other", TokenExpiry: time.Hour})
	foreign, err := otherSecret.IssueToken(&models.Identity{ID: "id-1", Email: "user@example.com"})
	require.NoError(t, err)

	expiredIssuer := NewAuthService(newMockIdentityStore(), validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", TokenExpiry: time.Nanosecond})
	expired, err := expiredIssuer.IssueToken(&models.Identity{ID: "id-1", Email: "user@example.com"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	for _, header := range []string{"", "Bearer ", "Bearer garbage", "not.a.token", foreign, expired} {
		assert.Nil(t, svc.ResolveToken(header), "header %q", header)
	}
}

func TestAuthServiceTokensSurviveNewServiceInstance(t *testing.T) {
	store := newMockIdentityStore()
	first := newTestAuthService(store)

	payload, err := first.Signup(context.Background(), SignupRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	// Tokens are self-contained: a fresh service with an empty store still
	// resolves them as long as the signing secret matches.
	second := newTestAuthService(newMockIdentityStore())
	claims := second.ResolveToken("Bearer " + payload.Token)
	require.NotNil(t, claims)
	assert.Equal(t, payload.Identity.ID, claims.Subject)
}

func TestAuthServiceDefaultExpiryIsSevenDays(t *testing.T) {
	svc := NewAuthService(newMockIdentityStore(), validator.New(), zap.NewNop(), AuthConfig{Secret: "secret"})

	token, err := svc.IssueToken(&models.Identity{ID: "id-1", Email: "user@example.com"})
	require.NoError(t, err)

	claims := svc.ResolveToken(token)
	require.NotNil(t, claims)
	horizon := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 7*24*time.Hour, horizon)
}
