package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth tokens per account.
type TokenProvider interface {
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)
	HasTokenForAccount(account string) bool
}

// FileTokenProvider stores tokens as JSON files in a directory.
type FileTokenProvider struct {
	creds Credentials
	dir   string
}

// NewFileTokenProvider creates a provider that uses the user cache directory.
func NewFileTokenProvider(creds Credentials) *FileTokenProvider {
	return NewFileTokenProviderWithDir(creds, tokenDir())
}

// NewFileTokenProviderWithDir creates a provider rooted at dir.
func NewFileTokenProviderWithDir(creds Credentials, dir string) *FileTokenProvider {
	return &FileTokenProvider{creds: creds, dir: dir}
}

// GetTokenForAccount loads the stored token for account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	tok, err := readToken(tokenFilePath(p.dir, account))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GetAuthenticationErrorMessage(account), err)
	}
	return tok, nil
}

// HasTokenForAccount reports whether a readable token exists for account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := readToken(tokenFilePath(p.dir, account))
	return err == nil
}

// AuthCodeURL returns the consent URL the operator opens in a browser.
func (p *FileTokenProvider) AuthCodeURL(state string) string {
	return p.creds.OAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it for account.
func (p *FileTokenProvider) Exchange(ctx context.Context, account, code string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	tok, err := p.creds.OAuthConfig().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(tokenFilePath(p.dir, account), tok)
}

// HTTPClient returns an authenticated client for account. Refreshed tokens are
// kept in memory; the stored refresh token stays valid.
func (p *FileTokenProvider) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	return HTTPClientForAccount(ctx, p.creds, p, account)
}

// HTTPClientForAccount builds an authenticated client for account from any provider.
func HTTPClientForAccount(ctx context.Context, creds Credentials, provider TokenProvider, account string) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}
	tok, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}
	ts := creds.OAuthConfig().TokenSource(ctx, tok)
	return newHTTPClient(ctx, ts), nil
}
