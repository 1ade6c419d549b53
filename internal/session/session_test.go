package session

import (
	"context"
	"testing"

	"glimpse/internal/identity"

	"github.com/stretchr/testify/assert"
)

// providerStub drives auth-state changes by hand.
type providerStub struct {
	session *identity.Session
	fns     []identity.AuthChangeFn
	unsubs  int
}

func (p *providerStub) SignUp(context.Context, string, string) (*identity.Account, error) {
	return nil, nil
}

func (p *providerStub) SignInWithPassword(context.Context, string, string) error { return nil }

func (p *providerStub) SignOut(context.Context) error { return nil }

func (p *providerStub) Session() *identity.Session { return p.session }

func (p *providerStub) OnAuthStateChange(fn identity.AuthChangeFn) identity.Subscription {
	p.fns = append(p.fns, fn)
	return &stubSubscription{provider: p}
}

func (p *providerStub) UpdateUser(context.Context, map[string]any) error { return nil }

func (p *providerStub) emit(event string, session *identity.Session) {
	p.session = session
	for _, fn := range p.fns {
		fn(event, session)
	}
}

type stubSubscription struct {
	provider *providerStub
}

func (s *stubSubscription) Unsubscribe() { s.provider.unsubs++ }

func TestManager_SeedsFromProvider(t *testing.T) {
	t.Parallel()

	provider := &providerStub{session: &identity.Session{
		AccountID: "acc-1",
		Metadata:  map[string]any{"user_id": 7},
	}}
	m := NewManager(provider)
	defer m.Close()

	assert.Equal(t, "acc-1", m.Current().AccountID)
	assert.Equal(t, uint(7), m.UserID())
}

func TestManager_TracksAuthChanges(t *testing.T) {
	t.Parallel()

	provider := &providerStub{}
	m := NewManager(provider)
	defer m.Close()

	assert.Nil(t, m.Current())
	assert.Zero(t, m.UserID(), "signed out means user id 0")

	provider.emit(identity.EventSignedIn, &identity.Session{
		AccountID: "acc-1",
		Metadata:  map[string]any{"user_id": 7},
	})
	assert.Equal(t, uint(7), m.UserID())

	provider.emit(identity.EventUserUpdated, &identity.Session{
		AccountID: "acc-1",
		Metadata:  map[string]any{"user_id": 7, "full_name": "Jane Doe"},
	})
	assert.Equal(t, "Jane Doe", m.Current().Metadata["full_name"])

	provider.emit(identity.EventSignedOut, nil)
	assert.Nil(t, m.Current())
	assert.Zero(t, m.UserID())
}

func TestManager_CloseUnsubscribes(t *testing.T) {
	t.Parallel()

	provider := &providerStub{}
	m := NewManager(provider)
	m.Close()
	assert.Equal(t, 1, provider.unsubs)
}
