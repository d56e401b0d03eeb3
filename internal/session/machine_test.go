package session

import (
	"errors"
	"testing"

	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	MemoryStore
	saveErr  error
	clearErr error
}

func (f *failingStore) Save(token string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(token)
}

func (f *failingStore) Clear() error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.MemoryStore.Clear()
}

var asha = model.UserResponse{ID: "u1", Name: "Asha", Email: "asha@x.com"}

func TestRehydrateWithoutToken(t *testing.T) {
	m := NewMachine(&MemoryStore{})

	state, err := m.Rehydrate()
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, state)
	assert.Empty(t, m.Token())
}

func TestRehydrateWithToken(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save("stored"))
	m := NewMachine(store)

	state, err := m.Rehydrate()
	require.NoError(t, err)
	assert.Equal(t, Loading, state)
	assert.Equal(t, "stored", m.Token())

	_, ok := m.User()
	assert.False(t, ok, "no user until the profile loads")

	require.NoError(t, m.UserLoaded(asha))
	assert.Equal(t, Authenticated, m.State())
	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, asha, user)
}

func TestRehydrateRejectedToken(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save("revoked"))
	m := NewMachine(store)

	_, err := m.Rehydrate()
	require.NoError(t, err)
	require.NoError(t, m.LoadFailed())

	assert.Equal(t, Unauthenticated, m.State())
	assert.Empty(t, m.Token())
	stored, _ := store.Load()
	assert.Empty(t, stored)
}

func TestLoginFlow(t *testing.T) {
	store := &MemoryStore{}
	m := NewMachine(store)

	require.NoError(t, m.StartLogin())
	assert.Equal(t, Loading, m.State())

	require.NoError(t, m.LoginSucceeded(model.AuthResponse{Token: "tok", User: asha}))
	assert.Equal(t, Authenticated, m.State())
	assert.Equal(t, "tok", m.Token())
	stored, _ := store.Load()
	assert.Equal(t, "tok", stored)

	require.NoError(t, m.Logout())
	assert.Equal(t, Unauthenticated, m.State())
	assert.Empty(t, m.Token())
	stored, _ = store.Load()
	assert.Empty(t, stored)
}

func TestLoginFailedClearsToken(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save("stale"))
	m := NewMachine(store)

	require.NoError(t, m.StartLogin())
	require.NoError(t, m.LoginFailed())

	assert.Equal(t, Unauthenticated, m.State())
	stored, _ := store.Load()
	assert.Empty(t, stored)
}

func TestInvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Machine)
		fire  func(m *Machine) error
		want  State
	}{
		{
			name: "login succeeded without start",
			fire: func(m *Machine) error { return m.LoginSucceeded(model.AuthResponse{Token: "t", User: asha}) },
			want: Unauthenticated,
		},
		{
			name: "user loaded while unauthenticated",
			fire: func(m *Machine) error { return m.UserLoaded(asha) },
			want: Unauthenticated,
		},
		{
			name: "load failed while unauthenticated",
			fire: func(m *Machine) error { return m.LoadFailed() },
			want: Unauthenticated,
		},
		{
			name:  "start login twice",
			setup: func(m *Machine) { m.StartLogin() },
			fire:  func(m *Machine) error { return m.StartLogin() },
			want:  Loading,
		},
		{
			name:  "user loaded during login without token",
			setup: func(m *Machine) { m.StartLogin() },
			fire:  func(m *Machine) error { return m.UserLoaded(asha) },
			want:  Loading,
		},
		{
			name: "rehydrate when authenticated",
			setup: func(m *Machine) {
				m.StartLogin()
				m.LoginSucceeded(model.AuthResponse{Token: "t", User: asha})
			},
			fire: func(m *Machine) error { _, err := m.Rehydrate(); return err },
			want: Authenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(&MemoryStore{})
			if tt.setup != nil {
				tt.setup(m)
			}
			err := tt.fire(m)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.want, m.State())
		})
	}
}

func TestLogoutWhenUnauthenticatedIsAllowed(t *testing.T) {
	m := NewMachine(&MemoryStore{})
	assert.NoError(t, m.Logout())
	assert.Equal(t, Unauthenticated, m.State())
}

func TestLoginSucceededSaveFailure(t *testing.T) {
	store := &failingStore{saveErr: errors.New("disk full")}
	m := NewMachine(store)

	require.NoError(t, m.StartLogin())
	err := m.LoginSucceeded(model.AuthResponse{Token: "tok", User: asha})
	require.Error(t, err)
	assert.Equal(t, Loading, m.State())
	assert.Empty(t, m.Token())
}

func TestLoginSucceededWithoutToken(t *testing.T) {
	m := NewMachine(&MemoryStore{})
	require.NoError(t, m.StartLogin())

	assert.Error(t, m.LoginSucceeded(model.AuthResponse{User: asha}))
	assert.Equal(t, Loading, m.State())
}

func TestLogoutClearFailureStillSignsOut(t *testing.T) {
	store := &failingStore{clearErr: errors.New("read-only")}
	m := NewMachine(store)
	require.NoError(t, m.StartLogin())
	require.NoError(t, m.LoginSucceeded(model.AuthResponse{Token: "tok", User: asha}))

	err := m.Logout()
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, m.State())
	assert.Empty(t, m.Token())
}

func TestStateAndEventStrings(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "logout-requested", LogoutRequested.String())
	assert.Equal(t, "State(9)", State(9).String())
}
