package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
)

// DefaultRedirectPort is the local port the consent callback listens on.
// The port must be registered as a redirect URI of the OAuth client.
const DefaultRedirectPort = "8085"

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body>
<h1>Authorization Successful</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>
`

// LocalServerFlow runs the installed-application consent flow: it serves a
// callback on localhost, sends the user to the consent page and exchanges
// the returned code for a token.
type LocalServerFlow struct {
	Config *oauth2.Config

	// Port defaults to DefaultRedirectPort.
	Port string

	// OpenBrowser defaults to the platform opener.
	OpenBrowser func(url string) error

	// Out receives progress messages. Defaults to io.Discard.
	Out io.Writer

	// Timeout bounds the wait for the callback. Defaults to 5 minutes.
	Timeout time.Duration
}

// Run executes the flow and returns the exchanged token.
func (f *LocalServerFlow) Run(ctx context.Context) (*oauth2.Token, error) {
	port := f.Port
	if port == "" {
		port = DefaultRedirectPort
	}
	out := f.Out
	if out == nil {
		out = io.Discard
	}
	open := f.OpenBrowser
	if open == nil {
		open = OpenBrowser
	}
	timeout := f.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	listener, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}

	conf := *f.Config
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", listener.Addr().(*net.TCPAddr).Port)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(codeChan, errChan))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(out, "🔐 Opening browser for Google authorization...")
	if err := open(authURL); err != nil {
		fmt.Fprintln(out, "⚠️  Couldn't open browser automatically.")
		fmt.Fprintln(out, "   Please open this URL manually:")
		fmt.Fprintln(out, authURL)
	}
	fmt.Fprintln(out, "⏳ Waiting for authorization...")

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for authorization")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return tok, nil
}

func callbackHandler(codeChan chan<- string, errChan chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errMsg := r.URL.Query().Get("error")
			http.Error(w, "Authorization failed: "+errMsg, http.StatusBadRequest)
			select {
			case errChan <- fmt.Errorf("authorization failed: %s", errMsg):
			default:
			}
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, callbackPage)

		select {
		case codeChan <- code:
		default:
		}
	})
}

// OpenBrowser opens url with the platform's default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
