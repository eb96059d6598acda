package google

import (
	"context"
	"os"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// Token returns the stored OAuth token.
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken reports whether a token is available.
	HasToken() bool
}

// FileTokenProvider provides the token persisted in a JSON file.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a token provider backed by path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Path returns the token file location.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// Token reads the token file. A missing file yields ErrNoToken.
func (p *FileTokenProvider) Token(_ context.Context) (*oauth2.Token, error) {
	return ReadToken(p.path)
}

// HasToken checks if the token file exists.
func (p *FileTokenProvider) HasToken() bool {
	_, err := os.Stat(p.path)
	return err == nil
}
