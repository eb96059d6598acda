package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var (
	// ErrNoCredentials is returned when the OAuth client credentials file is missing.
	ErrNoCredentials = errors.New("no OAuth client credentials found")

	// ErrNoToken is returned when no persisted OAuth token exists.
	ErrNoToken = errors.New("no Google OAuth token found")
)

// CalendarScopes are the OAuth scopes requested for calendar access.
var CalendarScopes = []string{calendar.CalendarScope}

// LoadOAuthConfig reads a Google "installed application" credentials file.
// Scopes default to CalendarScopes.
func LoadOAuthConfig(credentialsFile string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoCredentials, credentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if len(scopes) == 0 {
		scopes = CalendarScopes
	}

	conf, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return conf, nil
}

// ReadToken loads a JSON encoded token from path.
func ReadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoToken, path)
		}
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

// WriteToken persists tok as JSON, readable only by the current user.
func WriteToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return f.Close()
}

// persistingTokenSource writes refreshed tokens back to disk so the next
// process start does not need to refresh again.
type persistingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

// NewPersistingTokenSource returns a token source that refreshes tok with
// conf and saves every newly issued access token to path.
func NewPersistingTokenSource(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, path string) oauth2.TokenSource {
	return &persistingTokenSource{
		base: conf.TokenSource(ctx, tok),
		path: path,
		last: tok.AccessToken,
	}
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := WriteToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// NewHTTPClient returns an HTTP client authenticated with ts.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}

	return client
}

// NewCalendarService builds an authenticated Calendar API service from the
// credentials and token files. Refreshed tokens are written back to tokenFile.
func NewCalendarService(ctx context.Context, credentialsFile, tokenFile string) (*calendar.Service, error) {
	conf, err := LoadOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	tok, err := NewFileTokenProvider(tokenFile).Token(ctx)
	if err != nil {
		return nil, err
	}

	ts := NewPersistingTokenSource(ctx, conf, tok, tokenFile)
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(NewHTTPClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}
