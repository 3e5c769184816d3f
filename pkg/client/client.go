package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/menulens/menulens/pkg/api"
)

// expiryBuffer is how far ahead of expiry a session already counts as
// stale, so a token never expires mid-request.
const expiryBuffer = 5 * time.Minute

const maxResponseBytes = 4 << 20

var (
	ErrSessionRequest  = errors.New("failed to request session")
	ErrSessionResponse = errors.New("invalid session response")
)

// APIError is a non-2xx response from the server, carrying the generic
// user-facing message from the body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type session struct {
	id        string
	token     string
	expiresAt time.Time
}

// Client talks to one MenuLens server on behalf of one logical browser
// session. Safe for concurrent use.
type Client struct {
	baseURL string
	origin  string
	http    *http.Client
	now     func() time.Time

	mu      sync.Mutex
	session *session
	issue   singleflight.Group
}

// New creates a Client for the server at baseURL, presenting origin on
// every request. The origin must be on the server's allow-list.
func New(baseURL string, origin string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  origin,
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// SessionID returns the current session id, or "" while Empty.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.id
}

// EnsureValidSession returns a usable token, issuing a new session only
// when the cached one is missing or stale. Concurrent callers share one
// in-flight issuance rather than stacking duplicates.
func (c *Client) EnsureValidSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	if s := c.session; s != nil && c.now().Add(expiryBuffer).Before(s.expiresAt) {
		token := s.token
		c.mu.Unlock()
		return token, nil
	}
	c.session = nil
	c.mu.Unlock()

	ch := c.issue.DoChan("session", func() (any, error) {
		// the issuance is shared, so it must outlive any one caller's ctx
		s, err := c.issueSession(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.session = s
		c.mu.Unlock()
		return s.token, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// RefreshSession unconditionally discards the current session and
// issues a new one. It bypasses the shared in-flight issuance: an
// explicit refresh may overlap an automatic one, and last write wins.
func (c *Client) RefreshSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	s, err := c.issueSession(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return s.token, nil
}

func (c *Client) issueSession(ctx context.Context) (*session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionRequest, err)
	}
	req.Header.Set("Origin", c.origin)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionRequest, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionResponse, err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, apiError(res.StatusCode, body)
	}

	var parsed api.SessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionResponse, err)
	}
	if parsed.SessionID == "" || parsed.Token == "" || parsed.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: missing fields", ErrSessionResponse)
	}

	return &session{
		id:        parsed.SessionID,
		token:     parsed.Token,
		expiresAt: c.now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}, nil
}

func apiError(status int, body []byte) *APIError {
	var parsed api.ErrorResponse
	_ = json.Unmarshal(body, &parsed)
	if parsed.Error == "" {
		parsed.Error = http.StatusText(status)
	}
	return &APIError{Status: status, Message: parsed.Error}
}
