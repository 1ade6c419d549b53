// Package toggle implements the optimistic mutation engine: one generic
// boolean-toggle state machine instantiated per toggle kind (like, save).
// Local state flips before the remote call resolves and is rolled back to the
// pre-toggle snapshot on any failure.
package toggle

import (
	"context"
	"log/slog"
	"sync"

	"glimpse/internal/observability"
)

// Notifier surfaces user-facing failure messages (the UI shows them as
// transient toasts).
type Notifier interface {
	Error(message string)
}

// slogNotifier is the default Notifier, logging instead of toasting.
type slogNotifier struct {
	log *slog.Logger
}

func (n *slogNotifier) Error(message string) {
	n.log.Warn("toggle notification", slog.String("message", message))
}

// RemoteOps is the capability set a toggle kind is instantiated with.
// Activate and Deactivate report the envelope outcome: ok plus the
// user-facing message on failure.
type RemoteOps struct {
	Kind       string
	Activate   func(ctx context.Context, entityID, userID uint) (ok bool, message string)
	Deactivate func(ctx context.Context, entityID, userID uint) (ok bool, message string)
}

// State is the transient client-side projection of one entity's relationship
// set: the acting user's flag plus the total count.
type State struct {
	Active bool
	Count  int
}

type entityState struct {
	State
	pending bool
}

// Toggle tracks per-entity optimistic state for one toggle kind.
type Toggle struct {
	ops      RemoteOps
	notifier Notifier

	mu     sync.Mutex
	states map[uint]*entityState
}

// Option configures a Toggle.
type Option func(*Toggle)

// WithNotifier replaces the default slog-backed notifier.
func WithNotifier(n Notifier) Option {
	return func(t *Toggle) { t.notifier = n }
}

// New creates a Toggle for the given remote operations.
func New(ops RemoteOps, opts ...Option) *Toggle {
	t := &Toggle{
		ops:      ops,
		notifier: &slogNotifier{log: observability.Named("toggle." + ops.Kind)},
		states:   make(map[uint]*entityState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seed initializes an entity's state from the authoritative relationship set.
func (t *Toggle) Seed(entityID uint, active bool, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[entityID] = &entityState{State: State{Active: active, Count: count}}
}

// State returns the entity's current projection.
func (t *Toggle) State(entityID uint) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.states[entityID]; ok {
		return st.State
	}
	return State{}
}

// IsPending reports whether a toggle for the entity is in flight.
func (t *Toggle) IsPending(entityID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[entityID]
	return ok && st.pending
}

// Trigger runs one toggle sequence for (entityID, userID). Unauthenticated
// triggers are rejected with a notification; a trigger while one is already
// in flight for the entity is a no-op.
func (t *Toggle) Trigger(ctx context.Context, entityID, userID uint) {
	if userID == 0 {
		t.notifier.Error("please log in to " + t.ops.Kind + " posts")
		return
	}

	t.mu.Lock()
	st, ok := t.states[entityID]
	if !ok {
		st = &entityState{}
		t.states[entityID] = st
	}
	if st.pending {
		t.mu.Unlock()
		return
	}
	st.pending = true

	snapshot := st.State
	// Optimistic flip, strictly before the remote call is issued.
	if st.Active {
		st.Active = false
		if st.Count > 0 {
			st.Count--
		}
	} else {
		st.Active = true
		st.Count++
	}
	activated := st.Active
	t.mu.Unlock()

	settled := false
	restore := func(message string) {
		t.mu.Lock()
		st.State = snapshot
		st.pending = false
		t.mu.Unlock()
		observability.ToggleRollbacks.WithLabelValues(t.ops.Kind).Inc()
		t.notifier.Error(message)
	}
	defer func() {
		if r := recover(); r != nil && !settled {
			restore("an error occurred, please try again")
		}
	}()

	var remoteOK bool
	var message string
	if activated {
		remoteOK, message = t.ops.Activate(ctx, entityID, userID)
	} else {
		remoteOK, message = t.ops.Deactivate(ctx, entityID, userID)
	}
	settled = true

	if !remoteOK {
		if message == "" {
			message = "could not update post"
		}
		restore(message)
		return
	}

	// Success: local state already matches the server.
	t.mu.Lock()
	st.pending = false
	t.mu.Unlock()
}
