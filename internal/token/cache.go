package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

// RefreshBuffer is the safety margin before the issuer-declared expiry at
// which a cached token is already treated as expired.
const RefreshBuffer = 5 * time.Minute

// ErrMissingCredentials is returned when any of the three OAuth2 secrets is
// absent. No amount of retrying fixes a missing secret, so callers should
// treat this as fatal for the operation.
var ErrMissingCredentials = errors.New("ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET and ZOHO_REFRESH_TOKEN must all be set")

// RefreshError reports a failed token refresh. StatusCode and Body carry the
// token endpoint's response when one was received; Err carries a transport or
// decode failure otherwise.
type RefreshError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RefreshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token refresh: %v", e.Err)
	}
	return fmt.Sprintf("token refresh: status %d: %s", e.StatusCode, e.Body)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Config carries what the cache needs to refresh tokens.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	// AccountsURL is the Zoho accounts base, e.g. "https://accounts.zoho.com".
	AccountsURL string

	HTTPTimeout time.Duration
}

// Cache hands back a currently valid access token, refreshing transparently.
//
// A mutex serializes the whole lookup so concurrent callers never trigger
// redundant refreshes within one process; they either see the cached record
// or wait for the single in-flight refresh.
type Cache struct {
	cfg   Config
	store Store // nil disables persistence
	http  *http.Client
	log   logx.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewCache(cfg Config, store Store, log logx.Logger) *Cache {
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{
		cfg:   cfg,
		store: store,
		http:  &http.Client{Timeout: timeout},
		log:   log,
		now:   time.Now,
	}
}

// AccessToken returns a token valid for immediate use. A cached unexpired
// record is returned without any network call; otherwise a single synchronous
// refresh runs and its result (or error) is returned.
func (c *Cache) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok := c.load(ctx); tok != nil && tok.Valid(c.now(), RefreshBuffer) {
		c.log.Debug("using cached access token", logx.Time("expires_at", tok.ExpiresAt))
		return tok.AccessToken, nil
	}

	tok, err := c.refresh(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// load reads the persisted record. Storage is a cache: absence, unreadable
// files and corrupt records all come back as nil (cache miss), never as an
// error.
func (c *Cache) load(ctx context.Context) *Token {
	if c.store == nil {
		return nil
	}
	tok, err := c.store.Load(ctx)
	if err != nil {
		c.log.Debug("token load failed; treating as cache miss", logx.Err(err))
		return nil
	}
	return tok
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       string `json:"error"`
}

func (c *Cache) refresh(ctx context.Context) (Token, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" || c.cfg.RefreshToken == "" {
		return Token{}, ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("refresh_token", c.cfg.RefreshToken)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")

	endpoint := strings.TrimRight(c.cfg.AccountsURL, "/") + "/oauth/v2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, &RefreshError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Token{}, &RefreshError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, &RefreshError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Token{}, &RefreshError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return Token{}, &RefreshError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	// Zoho reports some grant failures with a 200 and an "error" field.
	if rr.Error != "" || rr.AccessToken == "" {
		return Token{}, &RefreshError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	now := c.now()
	tok := Token{
		AccessToken: rr.AccessToken,
		ObtainedAt:  now,
		ExpiresAt:   now.Add(time.Duration(rr.ExpiresIn) * time.Second),
	}

	if c.store != nil {
		// Best-effort: the fresh token is valid whether or not it persists.
		if err := c.store.Save(ctx, tok); err != nil {
			c.log.Warn("failed persisting refreshed token", logx.Err(err))
		}
	}
	c.log.Info("access token refreshed", logx.Time("expires_at", tok.ExpiresAt))
	return tok, nil
}
