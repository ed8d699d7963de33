// Package identity defines the contract between the session core and an
// external identity provider: the authenticated user record, the
// callback-style provider capability, and the provider error codes the core
// classifies against.
package identity

// Identity is the provider-supplied record of an authenticated user.
type Identity struct {
	Subject       string   // Provider's stable user identifier
	Email         string   // Primary email, if shared
	Name          string   // Display name
	GivenName     string   // First name
	FamilyName    string   // Last name
	AvatarURL     string   // Profile image URL
	GrantedScopes []string // Scopes the user actually consented to
}
