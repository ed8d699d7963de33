package session

import (
	"fmt"

	"github.com/mediadeck/signinkit/accounts"
	"github.com/mediadeck/signinkit/identity"
	"github.com/mediadeck/signinkit/scopes"
	"github.com/pkg/errors"
)

// classify maps provider-native error codes onto the session error taxonomy.
// The mapping lives here so provider-specific constants stay behind the
// identity package.
func classify(err error) *Error {
	switch identity.CodeOf(err) {
	case identity.CodeNoStoredCredential:
		return errUnauthenticated(err.Error())
	default:
		return errProvider(err.Error())
	}
}

// evaluate runs the validation procedure shared by restore, interactive
// sign-in and add-scopes. It is deterministic given its inputs and the
// store's materialization result:
//
//  1. provider error → ProviderError, or Unauthenticated when the provider
//     reports a secure-storage miss
//  2. no identity → Unauthenticated
//  3. granted scopes disjoint from required scopes → PermissionDenied
//  4. store rejects the identity → InvalidAccountData; otherwise Success
func (c *Controller) evaluate(id *identity.Identity, provErr error) Outcome {
	if provErr != nil {
		return Failure(classify(provErr))
	}
	if id == nil {
		return Failure(errUnauthenticated("provider returned no identity"))
	}

	granted := scopes.New(id.GrantedScopes...)
	if !granted.HasAny(c.required) {
		detail := fmt.Sprintf("granted scopes [%s] satisfy none of the required scopes [%s]", granted, c.required)
		return Failure(errPermissionDenied(detail))
	}

	account, err := c.store.Create(id)
	if err != nil {
		if errors.Is(err, accounts.ErrMalformedIdentity) {
			return Failure(errInvalidAccountData(err.Error()))
		}
		// The store broke its interface contract. This is a programming
		// error, not a runtime condition callers should handle.
		panic(fmt.Sprintf("session: account store returned an error outside its contract: %v", err))
	}

	return Success(account)
}
