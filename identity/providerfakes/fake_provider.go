package providerfakes

import (
	"context"
	"sync"

	"github.com/mediadeck/signinkit/identity"
)

var _ identity.Provider = (*FakeProvider)(nil)

// FakeProvider is a scripted identity.Provider for tests. Each operation
// replays the configured identity/error pair through its callback
// synchronously, unless DropCallbacks simulates a provider that never
// resumes.
type FakeProvider struct {
	lock sync.Mutex

	RestoreIdentity *identity.Identity
	RestoreErr      error

	SignInIdentity *identity.Identity
	SignInErr      error

	AddScopesIdentity *identity.Identity
	AddScopesErr      error

	DisconnectErr error

	// DropCallbacks suppresses every callback, leaving operations pending.
	DropCallbacks bool

	RestoreCalls    int
	SignInCalls     int
	SignOutCalls    int
	DisconnectCalls int
	AddScopesCalls  int

	// LastRequestedScopes records the scopes passed to AddScopes.
	LastRequestedScopes []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

func (p *FakeProvider) RestorePreviousSignIn(callback identity.Callback) {
	p.lock.Lock()
	p.RestoreCalls++
	id, err, drop := p.RestoreIdentity, p.RestoreErr, p.DropCallbacks
	p.lock.Unlock()

	if drop {
		return
	}
	callback(id, err)
}

func (p *FakeProvider) SignIn(ctx context.Context, pctx identity.PresentationContext, callback identity.Callback) {
	p.lock.Lock()
	p.SignInCalls++
	id, err, drop := p.SignInIdentity, p.SignInErr, p.DropCallbacks
	p.lock.Unlock()

	if drop {
		return
	}
	callback(id, err)
}

func (p *FakeProvider) SignOut() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.SignOutCalls++
}

func (p *FakeProvider) Disconnect(ctx context.Context, callback func(err error)) {
	p.lock.Lock()
	p.DisconnectCalls++
	err, drop := p.DisconnectErr, p.DropCallbacks
	p.lock.Unlock()

	if drop {
		return
	}
	callback(err)
}

func (p *FakeProvider) AddScopes(ctx context.Context, requested []string, pctx identity.PresentationContext, callback identity.Callback) {
	p.lock.Lock()
	p.AddScopesCalls++
	p.LastRequestedScopes = append([]string(nil), requested...)
	id, err, drop := p.AddScopesIdentity, p.AddScopesErr, p.DropCallbacks
	p.lock.Unlock()

	if drop {
		return
	}
	callback(id, err)
}
