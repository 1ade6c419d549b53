// Package identity provides the identity-provider surface consumed by the
// gateway: account creation, password sign-in, session lifecycle, and
// auth-state change notifications.
package identity

import (
	"context"
	"errors"
)

// Auth-state change events delivered to subscribers.
const (
	EventSignedIn    = "SIGNED_IN"
	EventSignedOut   = "SIGNED_OUT"
	EventUserUpdated = "USER_UPDATED"
)

// ErrEmailRegistered is returned by SignUp when the email already has an account.
var ErrEmailRegistered = errors.New("email already registered")

// ErrInvalidCredentials is returned by SignInWithPassword for any
// email/password mismatch; callers must not leak which part was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is the authenticated state for the current account.
type Session struct {
	AccessToken string         `json:"access_token"`
	AccountID   string         `json:"account_id"`
	Email       string         `json:"email"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UserID returns the store user id carried in session metadata, 0 when absent.
func (s *Session) UserID() uint {
	if s == nil {
		return 0
	}
	switch v := s.Metadata["user_id"].(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case int64:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return 0
	}
}

// AuthChangeFn is invoked on every auth-state transition. session is nil
// after sign-out.
type AuthChangeFn func(event string, session *Session)

// Subscription is a handle to an auth-state change registration.
type Subscription interface {
	Unsubscribe()
}

// Provider is the identity-provider contract.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Account, error)
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Session() *Session
	OnAuthStateChange(fn AuthChangeFn) Subscription
	UpdateUser(ctx context.Context, metadata map[string]any) error
}
