// Package sessiontoken implements the stateless session tokens that
// authenticate MenuLens API calls. A token is two unpadded base64url
// segments joined by a dot: a JSON payload and an HMAC-SHA256 signature
// over the exact payload bytes. Validity is fully determined by the
// signature plus the embedded expiry and origin; the server performs no
// lookup, so individual tokens cannot be revoked before expiry.
package sessiontoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMisconfigured    = errors.New("session token signing secret not configured")
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenExpired     = errors.New("token expired")
	ErrOriginMismatch   = errors.New("token origin mismatch")
	ErrBadSignature     = errors.New("token bad signature")
)

// DefaultTTL is the token lifetime used when Config.TTL is zero.
const DefaultTTL = 24 * time.Hour

// Payload is the signed content of a session token. Instants are
// milliseconds since the Unix epoch.
type Payload struct {
	SessionID string `json:"sid"`
	Origin    string `json:"origin"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Expiration returns the expiry instant of the payload.
func (p *Payload) Expiration() time.Time {
	return time.UnixMilli(p.ExpiresAt)
}

// Session is the result of a successful issuance.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
}

// ExpiresIn returns the remaining token lifetime in whole seconds,
// matching the `expiresIn` field of the issuance response.
func (s *Session) ExpiresIn() int {
	return int(time.Until(s.ExpiresAt).Round(time.Second).Seconds())
}

// Issuer mints signed session tokens for allow-listed origins.
type Issuer interface {
	Issue(origin string) (*Session, error)
	TTL() time.Duration
}

// Verifier checks a presented token's structure, expiry, origin binding,
// and signature. Errors are one of ErrTokenMalformed, ErrTokenExpired,
// ErrOriginMismatch, or ErrBadSignature.
type Verifier interface {
	Verify(token string, requestOrigin string) (*Payload, error)
}

// Config configures a token server. Secret is required; TTL defaults to
// DefaultTTL. AllowedOrigins entries are exact origins or wildcard
// subdomain patterns like "https://*.preview.example.app".
type Config struct {
	Secret         string
	TTL            time.Duration
	AllowedOrigins []string
}

// InitServer builds a Server, the issuing and verifying halves over one
// derived signing key. It fails with ErrMisconfigured when no secret is
// set; issuance must never silently fall back to an unsigned token.
func InitServer(cfg Config) (*Server, error) {
	return newServer(cfg)
}

func newSessionID(now time.Time) string {
	return fmt.Sprintf("%s-%s",
		strconv.FormatInt(now.UnixMilli(), 36),
		uuid.NewString(),
	)
}

func encodeSegment(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeSegment(segment string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64url segment: %v", ErrTokenMalformed, err)
	}
	return raw, nil
}

func splitToken(token string) (payload string, signature string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected two segments, found %d", ErrTokenMalformed, len(parts))
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: empty segment", ErrTokenMalformed)
	}
	return parts[0], parts[1], nil
}

func decodePayload(segment string) (*Payload, []byte, error) {
	raw, err := decodeSegment(segment)
	if err != nil {
		return nil, nil, err
	}
	payload := &Payload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, nil, fmt.Errorf("%w: payload not valid JSON: %v", ErrTokenMalformed, err)
	}
	return payload, raw, nil
}
