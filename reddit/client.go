// Package reddit is a thin adapter between the reddit data API and the
// collaborator interfaces the rulefive engine consumes. It covers only the
// handful of endpoints the bot needs: reading posts and comments, polling
// the subreddit listing, moderator actions, and the modmail conversation
// API. Authentication is the "script app" password grant, which is the
// only flow available to single-account bots.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	tokenURL = "https://www.reddit.com/api/v1/access_token"
	apiBase  = "https://oauth.reddit.com"
)

type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Client is a minimal reddit API client for a single script-app account.
// It is safe for concurrent use.
type Client struct {
	creds     Credentials
	userAgent string
	http      *http.Client
	logger    *slog.Logger

	// reddit allows 100 requests per minute per OAuth client
	limiter *rate.Limiter

	tokenLk     sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(creds Credentials, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		creds:     creds,
		userAgent: fmt.Sprintf("script:quintus:v1 (by /u/%s)", creds.Username),
		http:      robustHTTPClient(logger),
		logger:    logger.With("system", "reddit"),
		limiter:   rate.NewLimiter(rate.Every(600*time.Millisecond), 5),
	}
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in"`
	Error       string  `json:"error"`
}

// accessToken returns a cached bearer token, fetching a fresh one via the
// password grant when the cached token is missing or within a minute of
// expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenLk.Lock()
	defer c.tokenLk.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.creds.Username)
	form.Set("password", c.creds.Password)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: HTTP %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tok.Error != "" || tok.AccessToken == "" {
		return "", fmt.Errorf("token request rejected: %s", tok.Error)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.logger.Info("refreshed access token", "expiresIn", tok.ExpiresIn)
	return c.token, nil
}

// do performs an authenticated API request and decodes the JSON response
// into out (which may be nil to discard the body).
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// token was revoked out from under us; drop the cache so the
		// next call re-authenticates
		c.tokenLk.Lock()
		c.token = ""
		c.tokenLk.Unlock()
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, "GET", path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	return c.do(ctx, "POST", path, form, out)
}
