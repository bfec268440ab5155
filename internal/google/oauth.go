package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account name used when none is configured.
const DefaultAccount = "default"

// redirectURL is the loopback address Google redirects to after consent. Nothing
// listens there; the user copies the code parameter from the browser.
const redirectURL = "http://localhost"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Credentials identifies the OAuth client registered in the Google Cloud console.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthConfig returns the oauth2 configuration for the bot's scopes.
func (c Credentials) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}
}

// Validate reports whether both client id and secret are set.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("google OAuth client id and secret are required")
	}
	return nil
}

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// GetAuthenticationErrorMessage tells an operator how to obtain a token for account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("no Google OAuth token found for account %q; run 'discal auth --account %s' to authorize", account, account)
}

// tokenDir returns the default token directory.
func tokenDir() string {
	return filepath.Join(userCacheDir(), "discal")
}

func tokenFilePath(dir, account string) string {
	return filepath.Join(dir, "google-"+account+".token")
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid token file: no tokens")
	}
	return &tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// newHTTPClient returns an oauth2 client that speaks HTTP/1.1 only, which
// avoids intermittent HTTP/2 stream errors from the Google front ends.
func newHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
