package googleidp

import "github.com/pkg/browser"

// URLOpener is the presentation context this provider accepts: something able
// to put an authorization URL in front of the user.
type URLOpener interface {
	Open(rawURL string) error
}

// BrowserPresenter opens authorization URLs in the user's default browser.
type BrowserPresenter struct{}

func (BrowserPresenter) Open(rawURL string) error {
	return browser.OpenURL(rawURL)
}
