// Package session tracks the client's authentication state and persists its
// token between runs.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spendtrack/spendtrack-go/internal/model"
)

// ErrInvalidTransition is returned when an event is not allowed in the
// current state. The machine is left unchanged.
var ErrInvalidTransition = errors.New("invalid session transition")

// State is the client's view of its own authentication.
type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event drives a transition.
type Event int

const (
	Rehydrate Event = iota
	LoginStarted
	LoginSucceeded
	LoginFailed
	UserLoaded
	LoadFailed
	LogoutRequested
)

func (e Event) String() string {
	switch e {
	case Rehydrate:
		return "rehydrate"
	case LoginStarted:
		return "login-started"
	case LoginSucceeded:
		return "login-succeeded"
	case LoginFailed:
		return "login-failed"
	case UserLoaded:
		return "user-loaded"
	case LoadFailed:
		return "load-failed"
	case LogoutRequested:
		return "logout-requested"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// allowed lists the events each state accepts. Rehydrate's target depends on
// whether a token is stored, so it is resolved in Rehydrate itself.
var allowed = map[State]map[Event]State{
	Unauthenticated: {
		Rehydrate:       Loading,
		LoginStarted:    Loading,
		LogoutRequested: Unauthenticated,
	},
	Loading: {
		LoginSucceeded:  Authenticated,
		LoginFailed:     Unauthenticated,
		UserLoaded:      Authenticated,
		LoadFailed:      Unauthenticated,
		LogoutRequested: Unauthenticated,
	},
	Authenticated: {
		LoginStarted:    Loading,
		LogoutRequested: Unauthenticated,
	},
}

// Machine is the client session. It is safe for concurrent use.
type Machine struct {
	mu    sync.Mutex
	store TokenStore
	state State
	token string
	user  *model.UserResponse
}

// NewMachine returns a machine in the Unauthenticated state. Call Rehydrate
// to pick up a token saved by an earlier run.
func NewMachine(store TokenStore) *Machine {
	return &Machine{store: store, state: Unauthenticated}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the token to attach to requests, or "".
func (m *Machine) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// User returns the signed-in user once the session is Authenticated.
func (m *Machine) User() (model.UserResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated || m.user == nil {
		return model.UserResponse{}, false
	}
	return *m.user, true
}

// Rehydrate loads a stored token. With one the session moves to Loading and
// the caller should fetch the current user; without one it stays
// Unauthenticated.
func (m *Machine) Rehydrate() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(Rehydrate); err != nil {
		return m.state, err
	}

	token, err := m.store.Load()
	if err != nil {
		return m.state, fmt.Errorf("loading token: %w", err)
	}
	if token == "" {
		return m.state, nil
	}

	m.token = token
	m.move(Rehydrate, Loading)
	return m.state, nil
}

// StartLogin records that credentials have been submitted.
func (m *Machine) StartLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(LoginStarted)
}

// LoginSucceeded stores the issued token and marks the session Authenticated.
// If the token cannot be persisted the state is left unchanged.
func (m *Machine) LoginSucceeded(resp model.AuthResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(LoginSucceeded); err != nil {
		return err
	}
	if resp.Token == "" {
		return errors.New("login response has no token")
	}
	if err := m.store.Save(resp.Token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	user := resp.User
	m.token = resp.Token
	m.user = &user
	return m.apply(LoginSucceeded)
}

// LoginFailed drops any token and returns to Unauthenticated.
func (m *Machine) LoginFailed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOut(LoginFailed)
}

// UserLoaded completes rehydration with the profile the server returned for
// the stored token.
func (m *Machine) UserLoaded(user model.UserResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(UserLoaded); err != nil {
		return err
	}
	if m.token == "" {
		return fmt.Errorf("%w: %s without a token", ErrInvalidTransition, UserLoaded)
	}

	m.user = &user
	return m.apply(UserLoaded)
}

// LoadFailed discards a stored token the server no longer accepts.
func (m *Machine) LoadFailed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOut(LoadFailed)
}

// Logout clears the token from memory and from the store.
func (m *Machine) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOut(LogoutRequested)
}

// signOut moves to Unauthenticated. The in-memory session is dropped even if
// the store cannot be cleared; that error is still returned.
func (m *Machine) signOut(ev Event) error {
	if err := m.check(ev); err != nil {
		return err
	}

	m.token = ""
	m.user = nil
	if err := m.apply(ev); err != nil {
		return err
	}

	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

func (m *Machine) check(ev Event) error {
	if _, ok := allowed[m.state][ev]; !ok {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, ev, m.state)
	}
	return nil
}

func (m *Machine) apply(ev Event) error {
	if err := m.check(ev); err != nil {
		return err
	}
	m.move(ev, allowed[m.state][ev])
	return nil
}

func (m *Machine) move(ev Event, to State) {
	slog.Debug("session transition", "event", ev, "from", m.state, "to", to)
	m.state = to
}
