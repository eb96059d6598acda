package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

const testCredentials = `{
  "installed": {
    "client_id": "test-client.apps.googleusercontent.com",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost"],
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadOAuthConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadOAuthConfig(filepath.Join(t.TempDir(), "credentials.json"))
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadOAuthConfig(writeFile(t, "credentials.json", "{not json"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("default scopes", func(t *testing.T) {
		conf, err := LoadOAuthConfig(writeFile(t, "credentials.json", testCredentials))
		require.NoError(t, err)
		assert.Equal(t, "test-client.apps.googleusercontent.com", conf.ClientID)
		assert.Equal(t, []string{calendar.CalendarScope}, conf.Scopes)
	})

	t.Run("explicit scopes", func(t *testing.T) {
		conf, err := LoadOAuthConfig(writeFile(t, "credentials.json", testCredentials), calendar.CalendarReadonlyScope)
		require.NoError(t, err)
		assert.Equal(t, []string{calendar.CalendarReadonlyScope}, conf.Scopes)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, WriteToken(path, &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))

	tok, err := ReadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestReadToken_Missing(t *testing.T) {
	_, err := ReadToken(filepath.Join(t.TempDir(), "token.json"))
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	p := NewFileTokenProvider(path)

	assert.False(t, p.HasToken())
	_, err := p.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, WriteToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	assert.True(t, p.HasToken())

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, path, p.Path())
}

func newTokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"fresh-%d","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPersistingTokenSource_SavesRefreshedToken(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, &calls)

	conf := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams},
	}
	path := filepath.Join(t.TempDir(), "token.json")
	expired := &oauth2.Token{AccessToken: "stale", RefreshToken: "refresh", Expiry: time.Now().Add(-time.Hour)}

	ts := NewPersistingTokenSource(context.Background(), conf, expired, path)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)

	saved, err := ReadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", saved.AccessToken)

	// A still-valid token is served from the cache without another write.
	require.NoError(t, os.Remove(path))
	_, err = ts.Token()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCallbackHandler(t *testing.T) {
	t.Run("code", func(t *testing.T) {
		codeChan := make(chan string, 1)
		errChan := make(chan error, 1)

		rec := httptest.NewRecorder()
		callbackHandler(codeChan, errChan).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authorization Successful")
		assert.Equal(t, "abc", <-codeChan)
	})

	t.Run("denied", func(t *testing.T) {
		codeChan := make(chan string, 1)
		errChan := make(chan error, 1)

		rec := httptest.NewRecorder()
		callbackHandler(codeChan, errChan).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?error=access_denied", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		err := <-errChan
		assert.Contains(t, err.Error(), "access_denied")
	})
}

func TestLocalServerFlow_Run(t *testing.T) {
	var calls int32
	tokenSrv := newTokenServer(t, &calls)

	flow := &LocalServerFlow{
		Config: &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://accounts.example.com/auth",
				TokenURL:  tokenSrv.URL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		Port:    "0",
		Timeout: 5 * time.Second,
		OpenBrowser: func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			redirect := u.Query().Get("redirect_uri")
			go func() {
				resp, err := http.Get(redirect + "?code=the-code")
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tok, err := flow.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
}
