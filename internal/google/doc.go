// Package google loads Google OAuth client credentials and persisted tokens
// and turns them into an authenticated Calendar API service.
//
// Tokens are stored as JSON in a single file. Refreshed tokens are written
// back through NewPersistingTokenSource. LocalServerFlow obtains the initial
// token through the installed-application consent flow.
package google
