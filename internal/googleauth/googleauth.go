// Package googleauth produces token sources for the two Google credentials
// this project uses: a user OAuth token for Gmail and a service account for
// Sheets.
package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// redirectAddr is the local listener the OAuth consent flow redirects back
// to. It must match a redirect URI registered on the OAuth client.
const redirectAddr = "localhost:8080"

// SheetsScopes grant spreadsheet access plus drive, which sheet lookup by
// id requires for spreadsheets not owned by the service account.
var SheetsScopes = []string{
	sheetsapi.SpreadsheetsScope,
	sheetsapi.DriveScope,
}

// GmailTokenSource loads the cached user token and returns a refreshing
// token source that persists refreshed tokens back to tokenPath. It fails
// when no token is cached; run the authorize command first.
func GmailTokenSource(ctx context.Context, oauthClientPath, tokenPath string) (oauth2.TokenSource, error) {
	cfg, err := oauthConfig(oauthClientPath)
	if err != nil {
		return nil, err
	}

	tok, err := readToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("GmailTokenSource: no cached token (run the authorize command first): %w", err)
	}

	return &savingTokenSource{
		src:  cfg.TokenSource(ctx, tok),
		path: tokenPath,
		last: tok,
	}, nil
}

// Authorize runs the installed-app consent flow: prints the consent URL,
// waits for the redirect on localhost, exchanges the code and caches the
// token at tokenPath.
func Authorize(ctx context.Context, oauthClientPath, tokenPath string) error {
	cfg, err := oauthConfig(oauthClientPath)
	if err != nil {
		return err
	}
	cfg.RedirectURL = "http://" + redirectAddr + "/"

	state, err := randomState()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", redirectAddr)
	if err != nil {
		return fmt.Errorf("Authorize: listening on %s: %w", redirectAddr, err)
	}
	defer listener.Close()

	fmt.Printf("Open this URL in your browser to authorize Gmail access:\n\n%s\n\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	code, err := waitForCode(ctx, listener, state)
	if err != nil {
		return err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("Authorize: exchanging code: %w", err)
	}
	if err := writeToken(tokenPath, tok); err != nil {
		return err
	}
	return nil
}

// SheetsTokenSource builds a token source from service-account credentials.
func SheetsTokenSource(ctx context.Context, serviceAccountPath string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(serviceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("SheetsTokenSource: reading credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(data, SheetsScopes...)
	if err != nil {
		return nil, fmt.Errorf("SheetsTokenSource: parsing credentials: %w", err)
	}
	return cfg.TokenSource(ctx), nil
}

func oauthConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OAuth client file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, gmailapi.GmailModifyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing OAuth client file: %w", err)
	}
	return cfg, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	return &tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("writeToken: %w", err)
	}
	// Token grants mailbox access; keep it private.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writeToken: %w", err)
	}
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("randomState: %w", err)
	}
	return fmt.Sprintf("%x", b), nil
}

// waitForCode serves a single redirect request and returns the auth code.
func waitForCode(ctx context.Context, listener net.Listener, state string) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("waitForCode: state mismatch")}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("waitForCode: redirect missing code")}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		results <- result{code: code}
	})}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			results <- result{err: fmt.Errorf("waitForCode: serving redirect: %w", err)}
		}
	}()
	defer srv.Close()

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// savingTokenSource persists refreshed tokens so the next run skips the
// consent flow, matching the cached-token behavior users already rely on.
type savingTokenSource struct {
	src  oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		if err := writeToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok
	}
	return tok, nil
}
