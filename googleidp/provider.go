// Package googleidp implements the identity.Provider capability against
// Google's OIDC endpoints using a loopback-redirect browser flow. The session
// core never sees any of the protocol details in here; it only receives
// identities and coded provider errors through the callback contract.
package googleidp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mediadeck/signinkit/identity"
	"github.com/mediadeck/signinkit/scopes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	defaultIssuerURL    = "https://accounts.google.com"
	defaultCallbackPort = 9876
	revokeURL           = "https://oauth2.googleapis.com/revoke"

	httpTimeout = 30 * time.Second
)

var errExpiredCredential = errors.New("cached credential has expired")

// Config holds the OAuth client settings for the Google provider.
type Config struct {
	ClientID     string
	ClientSecret string
	Scopes       []string // Scopes requested at interactive sign-in
	CallbackPort int      // First loopback port to try; defaults to 9876
	IssuerURL    string   // Defaults to accounts.google.com
}

var _ identity.Provider = (*Provider)(nil)

// Provider is a Google-backed identity.Provider. Credentials are cached in
// process memory only, so restoring a sign-in across process restarts
// reports a secure-storage miss (token persistence is out of scope).
type Provider struct {
	cfg    Config
	logger zerolog.Logger

	lock          sync.Mutex
	token         *oauth2.Token
	rawIDToken    string
	grantedScopes []string
}

// ProviderOption defines a function type to modify the Provider instance.
type ProviderOption func(*Provider)

// WithLogger sets the provider's logger.
func WithLogger(logger zerolog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// New creates a Google identity provider from the given config.
func New(cfg Config, options ...ProviderOption) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("[New] client ID is required")
	}
	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = defaultCallbackPort
	}
	if cfg.IssuerURL == "" {
		cfg.IssuerURL = defaultIssuerURL
	}

	provider := &Provider{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(provider)
	}
	return provider, nil
}

// RestorePreviousSignIn recovers the identity from the cached ID token
// without touching the network. No cached or expired credential is reported
// as CodeNoStoredCredential.
func (p *Provider) RestorePreviousSignIn(callback identity.Callback) {
	p.lock.Lock()
	raw, granted := p.rawIDToken, p.grantedScopes
	p.lock.Unlock()

	if raw == "" {
		callback(nil, identity.NewError(identity.CodeNoStoredCredential, "no cached credential"))
		return
	}

	id, err := identityFromIDToken(raw, granted)
	if err != nil {
		if errors.Is(err, errExpiredCredential) {
			callback(nil, identity.NewError(identity.CodeNoStoredCredential, err.Error()))
			return
		}
		callback(nil, identity.NewError(identity.CodeUnknown, err.Error()))
		return
	}
	callback(id, nil)
}

// SignIn runs the loopback-redirect browser flow. The presentation context
// must be a URLOpener.
func (p *Provider) SignIn(ctx context.Context, pctx identity.PresentationContext, callback identity.Callback) {
	opener, ok := pctx.(URLOpener)
	if !ok {
		callback(nil, identity.NewError(identity.CodeUnknown, "presentation context cannot open an authorization URL"))
		return
	}
	go func() {
		id, err := p.runFlow(ctx, opener, p.cfg.Scopes)
		callback(id, err)
	}()
}

// SignOut drops the in-process credential cache. Fire-and-forget.
func (p *Provider) SignOut() {
	p.lock.Lock()
	p.token = nil
	p.rawIDToken = ""
	p.grantedScopes = nil
	p.lock.Unlock()
}

// Disconnect revokes the cached token at Google's revocation endpoint and, on
// success, clears local provider state.
func (p *Provider) Disconnect(ctx context.Context, callback func(err error)) {
	p.lock.Lock()
	token := p.token
	p.lock.Unlock()

	go func() {
		if err := revokeToken(ctx, token); err != nil {
			callback(errors.Wrap(err, "[Disconnect] revoking token"))
			return
		}
		p.SignOut()
		callback(nil)
	}()
}

// AddScopes reruns the interactive flow asking for the union of the already
// granted and the requested scopes.
func (p *Provider) AddScopes(ctx context.Context, requested []string, pctx identity.PresentationContext, callback identity.Callback) {
	opener, ok := pctx.(URLOpener)
	if !ok {
		callback(nil, identity.NewError(identity.CodeUnknown, "presentation context cannot open an authorization URL"))
		return
	}

	p.lock.Lock()
	granted := scopes.New(p.grantedScopes...)
	p.lock.Unlock()

	missing := false
	for _, token := range requested {
		if !granted.Has(token) {
			missing = true
			break
		}
	}
	if !missing && granted.Len() > 0 {
		callback(nil, identity.NewError(identity.CodeScopesAlreadyGranted, "every requested scope is already granted"))
		return
	}

	union := granted.Union(scopes.New(requested...))
	go func() {
		id, err := p.runFlow(ctx, opener, union.Slice())
		callback(id, err)
	}()
}

// cacheCredential stores the flow result for later restore attempts.
func (p *Provider) cacheCredential(token *oauth2.Token, rawIDToken string, granted []string) {
	p.lock.Lock()
	p.token = token
	p.rawIDToken = rawIDToken
	p.grantedScopes = granted
	p.lock.Unlock()
}

// idTokenClaims are the profile claims carried by a Google ID token.
type idTokenClaims struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	jwt.RegisteredClaims
}

// identityFromIDToken rebuilds an Identity from a cached ID token. The token
// was verified when it was first obtained, so an unverified parse is enough
// here; only the expiry still needs checking.
func identityFromIDToken(raw string, granted []string) (*identity.Identity, error) {
	claims := &idTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[identityFromIDToken] parsing cached ID token")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, errExpiredCredential
	}
	return &identity.Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		AvatarURL:     claims.Picture,
		GrantedScopes: append([]string(nil), granted...),
	}, nil
}

func revokeToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return nil
	}

	form := url.Values{}
	form.Set("token", token.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "[revokeToken] building request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "[revokeToken] revocation request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("[revokeToken] revocation endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
