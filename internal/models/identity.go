package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityCollection is the MongoDB collection used by the durable identity store.
const IdentityCollection = "identities"

// Identity is a signup/login credential record. The password is held only as a
// bcrypt hash; the plaintext never leaves the auth service.
type Identity struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// IdentityView is the public shape of an identity, safe to return to callers.
type IdentityView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// View strips the credential hash.
func (i *Identity) View() IdentityView {
	return IdentityView{ID: i.ID, Email: i.Email}
}

// TokenClaims is the claim set embedded in issued bearer tokens.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthPayload is returned by signup and login.
type AuthPayload struct {
	Token    string       `json:"token"`
	Identity IdentityView `json:"identity"`
}
