package session

import "github.com/mediadeck/signinkit/accounts"

// Outcome is the terminal result of a sign-in, restore or add-scopes
// attempt. Exactly one Outcome is published on the login stream per
// interactive call.
type Outcome struct {
	Account *accounts.Account
	Err     error // always a *Error when non-nil
}

// Success builds a successful outcome carrying the materialized account.
func Success(account *accounts.Account) Outcome {
	return Outcome{Account: account}
}

// Failure builds a failed outcome carrying the typed error.
func Failure(err *Error) Outcome {
	return Outcome{Err: err}
}

// Succeeded reports whether the attempt produced an account.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
