package accounts

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mediadeck/signinkit/identity"
	"github.com/mediadeck/signinkit/scopes"
	"github.com/pkg/errors"
)

var _ Store = (*Model)(nil)

// Model is the in-memory Store implementation. It keeps the single current
// account for the lifetime of the process and notifies subscribers on every
// change.
type Model struct {
	lock      sync.RWMutex
	current   *Account
	observers map[int]func(*Account)
	nextSubID int
	nowTime   func() time.Time
	newID     func() string
}

// ModelOption modifies a Model instance.
type ModelOption func(*Model)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ModelOption {
	return func(m *Model) {
		m.nowTime = nowFunc
	}
}

// WithIDGenerator sets the local account ID generator (primarily for testing).
func WithIDGenerator(idFunc func() string) ModelOption {
	return func(m *Model) {
		m.newID = idFunc
	}
}

// NewModel creates an empty in-memory account store.
func NewModel(options ...ModelOption) *Model {
	m := &Model{
		observers: make(map[int]func(*Account)),
		nowTime:   time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create materializes an Account from the identity and makes it current.
func (m *Model) Create(id *identity.Identity) (*Account, error) {
	if id == nil {
		return nil, errors.Wrap(ErrMalformedIdentity, "[Create] identity is nil")
	}
	if strings.TrimSpace(id.Subject) == "" {
		return nil, errors.Wrap(ErrMalformedIdentity, "[Create] identity has no subject")
	}

	account := &Account{
		ID:            m.newID(),
		Subject:       id.Subject,
		Email:         id.Email,
		Name:          id.Name,
		GivenName:     id.GivenName,
		FamilyName:    id.FamilyName,
		AvatarURL:     id.AvatarURL,
		GrantedScopes: scopes.New(id.GrantedScopes...),
		CreatedAt:     m.nowTime(),
	}

	m.lock.Lock()
	m.current = account
	observers := m.snapshotObserversLocked()
	m.lock.Unlock()

	for _, fn := range observers {
		fn(account)
	}
	return account, nil
}

// DeleteLocal clears the current account. No-op when none is present.
func (m *Model) DeleteLocal() {
	m.lock.Lock()
	had := m.current != nil
	m.current = nil
	observers := m.snapshotObserversLocked()
	m.lock.Unlock()

	if !had {
		return
	}
	for _, fn := range observers {
		fn(nil)
	}
}

// Current returns the current account, or nil.
func (m *Model) Current() *Account {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current
}

// Subscribe registers a change observer and returns its cancel func.
func (m *Model) Subscribe(fn func(*Account)) (cancel func()) {
	m.lock.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.observers[id] = fn
	m.lock.Unlock()

	return func() {
		m.lock.Lock()
		delete(m.observers, id)
		m.lock.Unlock()
	}
}

func (m *Model) snapshotObserversLocked() []func(*Account) {
	observers := make([]func(*Account), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	return observers
}
