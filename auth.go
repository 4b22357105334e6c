package blogapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 30 * 24 * time.Hour

// dummyHash is compared against when an email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("blogapp-dummy-password"), bcrypt.DefaultCost)

// HashPassword generates a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// sessionClaims are the trusted claims carried by a session token.
type sessionClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies credentials and mints signed session tokens.
type Authenticator struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator signing tokens with secret.
func NewAuthenticator(store *Store, secret string, ttl time.Duration, now func() time.Time) *Authenticator {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Authenticator{store: store, secret: []byte(secret), ttl: ttl, now: now}
}

// Login checks email and password. Any mismatch, including an unknown
// email, yields ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Principal, error) {
	u, err := a.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, upstream("lookup user", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{ID: u.ID, Role: u.Role}, nil
}

// IssueToken signs a token for p and returns it with its expiry.
func (a *Authenticator) IssueToken(p Principal) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := sessionClaims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// ParseToken validates a session token and returns its principal.
func (a *Authenticator) ParseToken(raw string) (Principal, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}
	if !validID(claims.Subject) || !claims.Role.Valid() {
		return Principal{}, ErrUnauthenticated
	}
	return Principal{ID: claims.Subject, Role: claims.Role}, nil
}
