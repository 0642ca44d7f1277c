// Package session projects the identity provider's session stream into an
// application-level auth state and guards sign-in/sign-up with local
// validation so malformed credentials never reach the provider.
package session

import (
	"context"
	"sync"
)

// Kind enumerates the auth state variants.
type Kind int

const (
	Loading Kind = iota
	Unauthenticated
	Authenticated
	Error
)

// AuthState is the current authentication state. UID and Email are set only
// for Authenticated, Message only for Error.
type AuthState struct {
	Kind    Kind
	UID     string
	Email   string
	Message string
}

// UserSession identifies a signed-in user as reported by the provider.
type UserSession struct {
	UID   string
	Email string
}

// Provider is the hosted identity provider boundary. Sessions emits the
// current session on every change, nil meaning signed out; the channel
// closes when the provider shuts down. SignOut is fire-and-forget: the
// session stream emission, not its return, drives the state transition.
type Provider interface {
	Sessions() <-chan *UserSession
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) error
	SignOut()
}

// Manager owns the auth state machine. It starts in Loading and follows the
// provider's session stream; sign-in/sign-up failures become Error without
// touching the underlying session.
type Manager struct {
	provider Provider
	out      chan AuthState

	mu    sync.Mutex
	state AuthState
}

// NewManager creates a manager and starts following the provider's stream.
func NewManager(p Provider) *Manager {
	m := &Manager{
		provider: p,
		out:      make(chan AuthState, 1),
		state:    AuthState{Kind: Loading},
	}
	go m.follow()
	return m
}

// State returns the current auth state.
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Updates delivers state transitions, latest wins.
func (m *Manager) Updates() <-chan AuthState {
	return m.out
}

// SignUp validates locally, then registers with the provider. On success the
// session stream moves the state to Authenticated; this call itself only
// surfaces failures.
func (m *Manager) SignUp(ctx context.Context, email, password string) {
	if !m.validate(email, password) {
		return
	}
	m.set(AuthState{Kind: Loading})
	if err := m.provider.SignUp(ctx, email, password); err != nil {
		m.set(AuthState{Kind: Error, Message: err.Error()})
	}
}

// SignIn validates locally, then authenticates with the provider.
func (m *Manager) SignIn(ctx context.Context, email, password string) {
	if !m.validate(email, password) {
		return
	}
	m.set(AuthState{Kind: Loading})
	if err := m.provider.SignIn(ctx, email, password); err != nil {
		m.set(AuthState{Kind: Error, Message: err.Error()})
	}
}

// SignOut asks the provider to end the session. The state transition to
// Unauthenticated arrives through the session stream.
func (m *Manager) SignOut() {
	m.provider.SignOut()
}

// ClearError dismisses a shown error. Only an Error state can be cleared,
// and it always returns to Unauthenticated: an authenticated user can never
// have had a sign-in error on screen.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Kind == Error {
		m.setLocked(AuthState{Kind: Unauthenticated})
	}
}

func (m *Manager) validate(email, password string) bool {
	if !ValidEmail(email) {
		m.set(AuthState{Kind: Error, Message: "please enter a valid email"})
		return false
	}
	if msg := PasswordError(password); msg != "" {
		m.set(AuthState{Kind: Error, Message: msg})
		return false
	}
	return true
}

func (m *Manager) follow() {
	for s := range m.provider.Sessions() {
		if s == nil {
			m.set(AuthState{Kind: Unauthenticated})
		} else {
			m.set(AuthState{Kind: Authenticated, UID: s.UID, Email: s.Email})
		}
	}
}

func (m *Manager) set(s AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(s)
}

func (m *Manager) setLocked(s AuthState) {
	m.state = s
	select {
	case m.out <- s:
	default:
		select {
		case <-m.out:
		default:
		}
		m.out <- s
	}
}
