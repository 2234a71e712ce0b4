package session

import (
	"sync"

	"github.com/accessware/go-console/credentials"
	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/accessware/go-console/workspace"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// User is the authenticated console user. Populated lazily from the
// profile endpoint after credentials exist; never required for
// IsAuthenticated.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	IsSuperAdmin bool   `json:"isSuperAdmin"`
}

// Manager is the process-wide session state: whether the console is
// authenticated, which user it is acting as, and which workspace is
// current. The durable store is read once at initialization; after
// that, every subsystem reads credentials from here.
//
// Mutations are last-write-wins in completion order. There is no
// versioning or compare-and-swap: a stale SetCredentials from an old
// login can overwrite a newer pair, matching the behavior the backend
// contract was built around.
type Manager struct {
	store  credentials.Store
	events *TokenEvents
	log    zerolog.Logger

	lock             sync.RWMutex
	creds            credentials.Pair
	authenticated    bool
	user             *User
	currentWorkspace *workspace.Workspace
}

var _ workspace.SessionState = (*Manager)(nil)

type ManagerOption func(*Manager)

func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

func NewManager(store credentials.Store, options ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		events: NewTokenEvents(),
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Initialize restores the session from the durable store. A stored
// access token means authenticated until a failed request proves
// otherwise. A corrupt record is treated as logged out, not fatal.
func (m *Manager) Initialize() error {
	pair, err := m.store.Load()
	if err != nil {
		if consoleerrors.Is(err, consoleerrors.ErrCorruptCredentials) {
			m.log.Warn().Err(err).Msg("discarding unreadable stored credentials")
			return m.Logout()
		}
		return errors.Wrap(err, "Manager.Initialize Load")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if pair != nil {
		m.creds = *pair
		m.authenticated = true
	}
	return nil
}

func (m *Manager) IsAuthenticated() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.authenticated
}

// Credentials returns the cached pair. The zero Pair means logged out.
func (m *Manager) Credentials() credentials.Pair {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.creds
}

// SetCredentials persists the pair, updates the in-memory mirror, and
// broadcasts the new tokens to subscribers, in that order. The optional
// user rides along when the caller already knows it (login response).
// Idempotent; the last completing caller wins.
func (m *Manager) SetCredentials(pair credentials.Pair, user *User) error {
	if !pair.Valid() {
		return consoleerrors.ErrPartialCredentials
	}

	if err := m.store.Save(pair); err != nil {
		return errors.Wrap(err, "Manager.SetCredentials Save")
	}

	m.lock.Lock()
	m.creds = pair
	m.authenticated = true
	if user != nil {
		m.user = user
	}
	m.lock.Unlock()

	m.events.Publish(TokenEvent{Pair: pair})
	return nil
}

func (m *Manager) User() *User {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.user
}

func (m *Manager) SetUser(user *User) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.user = user
}

func (m *Manager) CurrentWorkspace() *workspace.Workspace {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.currentWorkspace
}

func (m *Manager) SetCurrentWorkspace(ws *workspace.Workspace) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.currentWorkspace = ws
}

// Logout clears the durable store and every in-memory field. Safe to
// call repeatedly; memory is cleared even when the store refuses.
func (m *Manager) Logout() error {
	m.lock.Lock()
	m.creds = credentials.Pair{}
	m.authenticated = false
	m.user = nil
	m.currentWorkspace = nil
	m.lock.Unlock()

	if err := m.store.Clear(); err != nil {
		return errors.Wrap(err, "Manager.Logout Clear")
	}
	return nil
}

// Reset returns every field to its default without touching the
// durable store. For tests.
func (m *Manager) Reset() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.creds = credentials.Pair{}
	m.authenticated = false
	m.user = nil
	m.currentWorkspace = nil
}

// Subscribe registers for token-refresh broadcasts.
func (m *Manager) Subscribe() <-chan TokenEvent {
	return m.events.Subscribe()
}

func (m *Manager) Unsubscribe(ch <-chan TokenEvent) {
	m.events.Unsubscribe(ch)
}
