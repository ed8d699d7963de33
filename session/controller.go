// Package session implements the sign-in lifecycle: restoring a previous
// session, interactive sign-in, scope validation, incremental scope requests
// and sign-out, with outcomes pushed on independent login and logout streams.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mediadeck/signinkit/accounts"
	"github.com/mediadeck/signinkit/identity"
	"github.com/mediadeck/signinkit/scopes"
	"github.com/mediadeck/signinkit/session/results"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Controller drives the sign-in lifecycle for one application session. It is
// a single logical owner: public methods are intended to be called from one
// goroutine, with the state guard degrading concurrent interactive calls to
// ErrInvalidState rather than racing.
type Controller struct {
	provider identity.Provider
	store    accounts.Store
	required scopes.Set
	logger   zerolog.Logger

	state atomic.Int32

	login  *results.Broadcaster[Outcome]
	logout *results.Broadcaster[bool]

	lock        sync.RWMutex
	currentUser *accounts.Account
	unsubscribe func()
}

// Option defines a function type to modify the Controller instance.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New initializes a Controller with its required capabilities. The required
// scope set is the application's fixed configuration; the permission check
// passes when at least one required scope has been granted.
func New(
	provider identity.Provider,
	store accounts.Store,
	required scopes.Set,
	options ...Option,
) (*Controller, error) {
	if provider == nil {
		return nil, errors.New("[New] identity provider is required")
	}
	if store == nil {
		return nil, errors.New("[New] account store is required")
	}
	if required.Len() == 0 {
		return nil, errors.New("[New] at least one required scope is needed")
	}

	controller := &Controller{
		provider: provider,
		store:    store,
		required: required,
		logger:   zerolog.Nop(),
		login:    results.NewBroadcaster[Outcome](),
		logout:   results.NewBroadcaster[bool](),
	}

	for _, opt := range options {
		opt(controller)
	}

	return controller, nil
}

// LoginResults subscribes to the login stream: exactly one Outcome per
// SignIn/AddScopes call.
func (c *Controller) LoginResults() (<-chan Outcome, func()) {
	return c.login.Subscribe()
}

// LogoutResults subscribes to the logout stream: one true per completed
// LogOut or Disconnect.
func (c *Controller) LogoutResults() (<-chan bool, func()) {
	return c.logout.Subscribe()
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// CurrentAccount returns the account the controller last observed from the
// store, or nil when signed out.
func (c *Controller) CurrentAccount() *accounts.Account {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.currentUser
}

// Initialize attempts to restore a previously authenticated identity. Finding
// no prior identity is not an error: the controller settles in Idle with no
// account. Any other validation failure is returned (and logged) as an
// initialization failure; it is not published on the login stream.
//
// The store change subscription is attached only after the restore settles so
// an externally set account cannot race the restore's own result.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateUninitialized), int32(StateRestoring)) {
		return errors.Wrapf(ErrInvalidState, "[Initialize] controller is %s", c.State())
	}

	comp := newCompletion[providerResult]()
	c.provider.RestorePreviousSignIn(func(id *identity.Identity, err error) {
		comp.resume(providerResult{id: id, err: err})
	})

	res, err := comp.await(ctx)
	if err != nil {
		c.state.Store(int32(StateIdle))
		c.watchStore()
		return errors.Wrap(err, "[Initialize] restore")
	}

	outcome := c.evaluate(res.id, res.err)
	c.state.Store(int32(StateIdle))
	c.watchStore()

	if outcome.Err != nil {
		var signInErr *Error
		if errors.As(outcome.Err, &signInErr) && signInErr.Kind == KindUnauthenticated {
			c.logger.Debug().Msg("no previous sign-in to restore")
			return nil
		}
		c.logger.Error().Err(outcome.Err).Msg("restoring previous sign-in failed")
		return errors.Wrap(outcome.Err, "[Initialize] restore validation")
	}

	c.logger.Info().Str("subject", outcome.Account.Subject).Msg("restored previous sign-in")
	return nil
}

// SignIn invokes the provider's interactive flow exactly once, runs the
// validation procedure on its result and publishes exactly one Outcome on the
// login stream. A nil presentation context fails with ErrInvalidState before
// the provider is touched.
func (c *Controller) SignIn(ctx context.Context, pctx identity.PresentationContext) (Outcome, error) {
	if pctx == nil {
		return Outcome{}, errors.Wrap(ErrInvalidState, "[SignIn] no presentation context available")
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateSigningIn)) {
		return Outcome{}, errors.Wrapf(ErrInvalidState, "[SignIn] controller is %s", c.State())
	}
	defer c.state.Store(int32(StateIdle))

	comp := newCompletion[providerResult]()
	c.provider.SignIn(ctx, pctx, func(id *identity.Identity, err error) {
		comp.resume(providerResult{id: id, err: err})
	})

	res, err := comp.await(ctx)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "[SignIn] interactive flow")
	}

	outcome := c.evaluate(res.id, res.err)
	c.publishLogin("sign-in", outcome)
	return outcome, nil
}

// AddScopes asks the user to grant the configured required scopes in
// addition to those already held. The result is routed through the identical
// validation procedure as sign-in and republished on the login stream, so
// add-scope UI can reuse sign-in error handling.
func (c *Controller) AddScopes(ctx context.Context, pctx identity.PresentationContext) (Outcome, error) {
	if pctx == nil {
		return Outcome{}, errors.Wrap(ErrInvalidState, "[AddScopes] no presentation context available")
	}
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateSigningIn)) {
		return Outcome{}, errors.Wrapf(ErrInvalidState, "[AddScopes] controller is %s", c.State())
	}
	defer c.state.Store(int32(StateIdle))

	comp := newCompletion[providerResult]()
	c.provider.AddScopes(ctx, c.required.Slice(), pctx, func(id *identity.Identity, err error) {
		comp.resume(providerResult{id: id, err: err})
	})

	res, err := comp.await(ctx)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "[AddScopes] interactive flow")
	}

	outcome := c.evaluate(res.id, res.err)
	c.publishLogin("add-scopes", outcome)
	return outcome, nil
}

// LogOut signs out of the provider, deletes the local account and publishes
// true on the logout stream. Provider sign-out is fire-and-forget; LogOut
// always succeeds locally and is safe to call with no account present.
func (c *Controller) LogOut() {
	c.provider.SignOut()
	c.store.DeleteLocal()
	c.logger.Info().Msg("signed out")
	c.logout.Publish(true)
}

// Disconnect revokes the application's access to the user's account. On
// provider failure nothing changes and nothing is published; the error is
// only returned. On success the local account is deleted, true is published
// on the logout stream and the controller reaches SignedOut.
func (c *Controller) Disconnect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateDisconnecting)) {
		return errors.Wrapf(ErrInvalidState, "[Disconnect] controller is %s", c.State())
	}

	comp := newCompletion[error]()
	c.provider.Disconnect(ctx, func(err error) {
		comp.resume(err)
	})

	provErr, err := comp.await(ctx)
	if err != nil {
		c.state.Store(int32(StateIdle))
		return errors.Wrap(err, "[Disconnect] awaiting provider")
	}
	if provErr != nil {
		c.state.Store(int32(StateIdle))
		c.logger.Warn().Err(provErr).Msg("disconnect refused by provider")
		return errors.Wrap(provErr, "[Disconnect] provider")
	}

	c.store.DeleteLocal()
	c.state.Store(int32(StateSignedOut))
	c.logger.Info().Msg("account disconnected")
	c.logout.Publish(true)
	return nil
}

// RequiredScopes returns a copy of the application's required scope set.
func (c *Controller) RequiredScopes() scopes.Set {
	return c.required.Union(nil)
}

func (c *Controller) publishLogin(operation string, outcome Outcome) {
	if outcome.Succeeded() {
		c.logger.Info().
			Str("operation", operation).
			Str("subject", outcome.Account.Subject).
			Msg("sign-in succeeded")
	} else {
		c.logger.Warn().
			Str("operation", operation).
			Err(outcome.Err).
			Msg("sign-in failed")
	}
	c.login.Publish(outcome)
}

// watchStore attaches the account change subscription. currentUser is written
// only here, in response to the store's change notification.
func (c *Controller) watchStore() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.unsubscribe != nil {
		return
	}
	c.unsubscribe = c.store.Subscribe(func(account *accounts.Account) {
		c.lock.Lock()
		c.currentUser = account
		c.lock.Unlock()
	})
	c.currentUser = c.store.Current()
}
