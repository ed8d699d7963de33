package identity

import "context"

// PresentationContext is an opaque handle identifying where interactive UI
// should be shown. It is owned by the caller and passed through to the
// provider unchanged.
type PresentationContext any

// Callback delivers the terminal result of an asynchronous provider
// operation. A provider must invoke it exactly once per operation; a provider
// that never calls back leaves the operation pending.
type Callback func(id *Identity, err error)

// Provider is the capability a concrete identity-provider integration must
// supply. Implementations report results through single-shot callbacks rather
// than blocking the caller.
type Provider interface {
	// RestorePreviousSignIn attempts to recover a previously authenticated
	// identity without user interaction. A secure-storage miss is reported as
	// an *Error with CodeNoStoredCredential.
	RestorePreviousSignIn(callback Callback)

	// SignIn runs the provider's interactive flow in the given presentation
	// context.
	SignIn(ctx context.Context, pctx PresentationContext, callback Callback)

	// SignOut clears the provider's local sign-in state. Fire-and-forget:
	// failures are not reported.
	SignOut()

	// Disconnect revokes the application's access to the user's account.
	Disconnect(ctx context.Context, callback func(err error))

	// AddScopes asks the user to grant additional scopes, reusing the
	// presentation context of an interactive sign-in.
	AddScopes(ctx context.Context, requested []string, pctx PresentationContext, callback Callback)
}
