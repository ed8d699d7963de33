package accounts

import (
	"github.com/mediadeck/signinkit/identity"
	"github.com/pkg/errors"
)

// ErrMalformedIdentity is returned by Store.Create when the identity cannot
// be materialized into an Account. It is the only error kind a Store is
// allowed to return from Create.
var ErrMalformedIdentity = errors.New("malformed identity")

// Store owns the current Account. At most one account exists at any time.
type Store interface {
	// Create materializes an Account from a provider identity and makes it
	// the current account, replacing any previous one. Fails with
	// ErrMalformedIdentity when the identity's profile data is unusable.
	Create(id *identity.Identity) (*Account, error)

	// DeleteLocal removes the current account. Deleting when no account is
	// present is a no-op.
	DeleteLocal()

	// Current returns the current account, or nil.
	Current() *Account

	// Subscribe registers fn to be called whenever the current account
	// changes (set or cleared). The returned cancel func removes the
	// subscription.
	Subscribe(fn func(*Account)) (cancel func())
}
