package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned by Resolve when the presented token cannot
// be tied to a live session: bad signature, unknown session ID, revoked
// session, or a deprovisioned identity.
var ErrInvalidSession = errors.New("invalid session")

// Session is one login of one identity. The database row is the source of
// truth: revoking the row invalidates every copy of the token immediately,
// regardless of what the token itself says.
type Session struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// SessionStore persists sessions. RevokeAllForIdentity participates in any
// transaction carried by ctx, so deprovisioning can revoke sessions
// atomically with the identity removal.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllForIdentity(ctx context.Context, identityID uuid.UUID) error
}

// PrincipalLookup resolves a live identity into a Principal. Implemented by
// the identity service; returning an error for deprovisioned identities is
// what makes their outstanding sessions die.
type PrincipalLookup interface {
	PrincipalByID(ctx context.Context, id uuid.UUID) (*Principal, error)
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SID string `json:"sid"`
}

// Manager issues and resolves session tokens. The token is an HS256 JWT
// whose only meaningful claim is the session ID; everything else about the
// principal is re-read from storage on every request.
type Manager struct {
	store      SessionStore
	lookup     PrincipalLookup
	signingKey []byte
}

func NewManager(store SessionStore, lookup PrincipalLookup, signingKey []byte) *Manager {
	return &Manager{
		store:      store,
		lookup:     lookup,
		signingKey: signingKey,
	}
}

// Open creates a session for the identity and returns the signed token.
func (m *Manager) Open(ctx context.Context, identityID uuid.UUID) (string, error) {
	s := &Session{
		ID:         uuid.New(),
		IdentityID: identityID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identityID.String(),
			IssuedAt: jwt.NewNumericDate(s.CreatedAt),
		},
		SID: s.ID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve validates the token and returns the principal behind it. Any
// failure along the way collapses to ErrInvalidSession so callers cannot
// distinguish a forged token from a revoked one.
func (m *Manager) Resolve(ctx context.Context, tokenStr string) (*Principal, error) {
	sid, err := m.parseSID(tokenStr)
	if err != nil {
		return nil, ErrInvalidSession
	}

	s, err := m.store.Get(ctx, sid)
	if err != nil || s == nil {
		return nil, ErrInvalidSession
	}
	if s.RevokedAt != nil {
		return nil, ErrInvalidSession
	}

	p, err := m.lookup.PrincipalByID(ctx, s.IdentityID)
	if err != nil || p == nil {
		return nil, ErrInvalidSession
	}
	return p, nil
}

// Close revokes the session behind the token. Closing an already revoked or
// unknown session is not an error; logout is idempotent.
func (m *Manager) Close(ctx context.Context, tokenStr string) error {
	sid, err := m.parseSID(tokenStr)
	if err != nil {
		return nil
	}
	if err := m.store.Revoke(ctx, sid); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// CloseAllFor revokes every session of the identity. Used on deprovision
// and on credential changes.
func (m *Manager) CloseAllFor(ctx context.Context, identityID uuid.UUID) error {
	if err := m.store.RevokeAllForIdentity(ctx, identityID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

func (m *Manager) parseSID(tokenStr string) (uuid.UUID, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}
	sid, err := uuid.Parse(claims.SID)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return sid, nil
}
