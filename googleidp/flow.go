package googleidp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/mediadeck/signinkit/identity"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// runFlow performs one interactive authorization-code flow: it starts a
// loopback callback server, sends the user's browser to the authorization
// endpoint, exchanges the returned code and verifies the ID token.
func (p *Provider) runFlow(ctx context.Context, opener URLOpener, requestedScopes []string) (*identity.Identity, error) {
	oidcProvider, err := oidc.NewProvider(ctx, p.cfg.IssuerURL)
	if err != nil {
		return nil, identity.NewError(identity.CodeUnknown, fmt.Sprintf("discovering issuer: %v", err))
	}

	port, err := findAvailablePort(p.cfg.CallbackPort)
	if err != nil {
		return nil, identity.NewError(identity.CodeUnknown, err.Error())
	}
	redirectURI := fmt.Sprintf("http://localhost:%d/callback", port)

	oauthCfg := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     oidcProvider.Endpoint(),
		RedirectURL:  redirectURI,
		Scopes:       withOpenIDScope(requestedScopes),
	}

	state, err := randomToken()
	if err != nil {
		return nil, identity.NewError(identity.CodeUnknown, err.Error())
	}
	nonce, err := randomToken()
	if err != nil {
		return nil, identity.NewError(identity.CodeUnknown, err.Error())
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)
	server := startCallbackServer(port, state, codeChan, errChan)
	defer server.Shutdown(context.Background())

	authURL := oauthCfg.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)

	p.logger.Info().Str("url", authURL).Msg("opening authorization URL")
	if err := opener.Open(authURL); err != nil {
		p.logger.Warn().Err(err).Msg("could not open authorization URL automatically")
	}

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, identity.NewError(identity.CodeCanceled, ctx.Err().Error())
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, identity.NewError(identity.CodeUnknown, fmt.Sprintf("exchanging authorization code: %v", err))
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, identity.NewError(identity.CodeUnknown, "no ID token in token response")
	}

	idToken, err := oidcProvider.Verifier(&oidc.Config{ClientID: p.cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, identity.NewError(identity.CodeUnknown, fmt.Sprintf("verifying ID token: %v", err))
	}

	claims := &idTokenClaims{}
	var nonceClaim struct {
		Nonce string `json:"nonce"`
	}
	if err := idToken.Claims(claims); err != nil {
		return nil, identity.NewError(identity.CodeUnknown, fmt.Sprintf("extracting claims: %v", err))
	}
	if err := idToken.Claims(&nonceClaim); err != nil {
		return nil, identity.NewError(identity.CodeUnknown, fmt.Sprintf("extracting nonce: %v", err))
	}
	if nonceClaim.Nonce != nonce {
		return nil, identity.NewError(identity.CodeUnknown, "nonce mismatch in ID token")
	}

	granted := grantedScopesFromToken(token, oauthCfg.Scopes)
	p.cacheCredential(token, rawIDToken, granted)

	return &identity.Identity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		AvatarURL:     claims.Picture,
		GrantedScopes: granted,
	}, nil
}

// grantedScopesFromToken reads the scopes the user actually consented to from
// the token response, falling back to the requested scopes when the provider
// omits the field.
func grantedScopesFromToken(token *oauth2.Token, requested []string) []string {
	if raw, ok := token.Extra("scope").(string); ok && raw != "" {
		return strings.Fields(raw)
	}
	return append([]string(nil), requested...)
}

func withOpenIDScope(requested []string) []string {
	for _, s := range requested {
		if s == oidc.ScopeOpenID {
			return append([]string(nil), requested...)
		}
	}
	return append([]string{oidc.ScopeOpenID}, requested...)
}

// findAvailablePort probes a small range starting at the configured port.
func findAvailablePort(start int) (int, error) {
	for port := start; port < start+10; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, errors.Errorf("[findAvailablePort] no available port in %d-%d", start, start+9)
}

// startCallbackServer serves the loopback redirect target for one flow.
func startCallbackServer(port int, expectedState string, codeChan chan<- string, errChan chan<- error) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if state := r.URL.Query().Get("state"); state != expectedState {
			errChan <- identity.NewError(identity.CodeUnknown, "state mismatch in authorization response")
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}

		if errMsg := r.URL.Query().Get("error"); errMsg != "" {
			errDesc := r.URL.Query().Get("error_description")
			code := identity.CodeUnknown
			if errMsg == "access_denied" {
				code = identity.CodeCanceled
			}
			errChan <- identity.NewError(code, fmt.Sprintf("%s: %s", errMsg, errDesc))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, resultHTML("Sign-in was not completed. You can close this window."))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- identity.NewError(identity.CodeUnknown, "no authorization code in response")
			http.Error(w, "No code received", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, resultHTML("Sign-in complete. You can close this window."))
		codeChan <- code
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: mux,
	}
	go server.ListenAndServe()
	return server
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "[randomToken] rand.Read")
	}
	return hex.EncodeToString(buf), nil
}

func resultHTML(message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<p>%s</p>
</body>
</html>`, message)
}
