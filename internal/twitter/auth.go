package twitter

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authenticate performs the app-only client-credentials exchange and
// returns a client holding the resulting bearer token. There is no token
// refresh: a crawl is short-lived and a bearer token outlives it.
func Authenticate(ctx context.Context, consumerKey, consumerSecret, baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	conf := &clientcredentials.Config{
		ClientID:     consumerKey,
		ClientSecret: consumerSecret,
		TokenURL:     baseURL + "/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := conf.Token(ctx)
	if err != nil {
		return nil, &AuthenticationError{Err: err}
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		bearer:     tok.AccessToken,
	}, nil
}

// NewClient builds a client around an already-issued bearer token.
// Used by tests and by anyone who obtained a token out of band.
func NewClient(bearer, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		bearer:     bearer,
	}
}
