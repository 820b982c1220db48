// Package zoho issues attendance mutations against the Zoho People API.
package zoho

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// dateFormat is the format descriptor Zoho expects in the request body;
// timeLayout is the matching Go layout for the timestamp itself.
const (
	dateFormat = "dd/MM/yyyy HH:mm:ss"
	timeLayout = "02/01/2006 15:04:05"
)

// Event is the transient outcome of one attendance call. It is logged and
// returned to the caller, never persisted.
type Event struct {
	Direction  Direction
	Timestamp  string
	StatusCode int
	Body       string
}

// TokenSource supplies a currently valid access token.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Config struct {
	// PeopleURL is the Zoho People base, e.g. "https://people.zoho.com".
	PeopleURL   string
	HTTPTimeout time.Duration
}

type Client struct {
	cfg     Config
	tokens  TokenSource
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
	now     func() time.Time
}

func New(cfg Config, tokens TokenSource, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http:   &http.Client{Timeout: timeout},
		// Zoho People throttles per-org API traffic; one request per second
		// is far below the limit and still instant for our call pattern.
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		log:     log,
		now:     time.Now,
	}
}

// CheckIn marks a presence start at the current wall-clock time.
func (c *Client) CheckIn(ctx context.Context) (Event, error) { return c.mark(ctx, DirectionIn) }

// CheckOut marks a presence end at the current wall-clock time.
func (c *Client) CheckOut(ctx context.Context) (Event, error) { return c.mark(ctx, DirectionOut) }

// mark performs exactly one attendance POST. The timestamp is local system
// time, which may differ from the scheduler's configured zone; that mismatch
// is long-standing observed behavior and is kept as-is.
func (c *Client) mark(ctx context.Context, dir Direction) (Event, error) {
	ev := Event{Direction: dir, Timestamp: c.now().Format(timeLayout)}

	// Token first: a failed credential fetch must abort before any
	// attendance traffic.
	tok, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return ev, fmt.Errorf("obtain access token: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return ev, err
	}

	form := url.Values{}
	form.Set("dateFormat", dateFormat)
	switch dir {
	case DirectionIn:
		form.Set("checkIn", ev.Timestamp)
	case DirectionOut:
		form.Set("checkOut", ev.Timestamp)
	default:
		return ev, fmt.Errorf("unknown direction %q", dir)
	}

	endpoint := strings.TrimRight(c.cfg.PeopleURL, "/") + "/people/api/attendance"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return ev, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Zoho-oauthtoken "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return ev, fmt.Errorf("attendance request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ev, fmt.Errorf("read attendance response: %w", err)
	}
	ev.StatusCode = resp.StatusCode
	ev.Body = strings.TrimSpace(string(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ev, fmt.Errorf("attendance request failed: status %d: %s", ev.StatusCode, ev.Body)
	}

	c.log.Info("attendance marked",
		logx.String("direction", string(dir)),
		logx.String("timestamp", ev.Timestamp),
		logx.Int("status", ev.StatusCode))
	return ev, nil
}
