// Package accounts holds the application's local representation of a
// signed-in user and the store that owns the single current account.
package accounts

import (
	"time"

	"github.com/mediadeck/signinkit/scopes"
)

// Account is the local record derived from a validated provider identity.
// Immutable once created; replaced wholesale on a new sign-in.
type Account struct {
	ID            string     // Local identifier (UUID)
	Subject       string     // Provider's stable user identifier
	Email         string     // Primary email
	Name          string     // Display name
	GivenName     string     // First name
	FamilyName    string     // Last name
	AvatarURL     string     // Profile image URL
	GrantedScopes scopes.Set // Scopes granted at sign-in time
	CreatedAt     time.Time  // When the account was materialized locally
}

// HasScope reports whether the account was granted the given scope.
func (a *Account) HasScope(token string) bool {
	return a.GrantedScopes.Has(token)
}
