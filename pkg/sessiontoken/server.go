package sessiontoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// hkdfInfo binds the derived signing key to this token format, so the
// same master secret can safely derive keys for other purposes later.
const hkdfInfo = "menulens session token v1"

const signingKeySize = 32

// Server implements both Issuer and Verifier over a shared derived key.
// Create one with InitServer.
type Server struct {
	key       []byte
	ttl       time.Duration
	allowlist *Allowlist
	now       func() time.Time
}

func newServer(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		return nil, ErrMisconfigured
	}

	key := make([]byte, signingKeySize)
	kdf := hkdf.New(sha256.New, []byte(cfg.Secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("%w: key derivation failed: %v", ErrMisconfigured, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Server{
		key:       key,
		ttl:       ttl,
		allowlist: NewAllowlist(cfg.AllowedOrigins),
		now:       time.Now,
	}, nil
}

// Allowlist exposes the server's origin allow-list, e.g. for hot reload.
func (s *Server) Allowlist() *Allowlist {
	return s.allowlist
}

//
// Issuer interface

func (s *Server) TTL() time.Duration {
	return s.ttl
}

func (s *Server) Issue(origin string) (*Session, error) {
	if !s.allowlist.Match(origin) {
		return nil, fmt.Errorf("%w: %q", ErrOriginNotAllowed, origin)
	}

	now := s.now()
	exp := now.Add(s.ttl)
	payload := &Payload{
		SessionID: newSessionID(now),
		Origin:    NormalizeOrigin(origin),
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: exp.UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize token payload: %v", err)
	}

	token := fmt.Sprintf("%s.%s", encodeSegment(raw), encodeSegment(s.sign(raw)))
	return &Session{
		ID:        payload.SessionID,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

//
// Verifier interface

func (s *Server) Verify(token string, requestOrigin string) (*Payload, error) {
	encPayload, encSignature, err := splitToken(token)
	if err != nil {
		return nil, err
	}

	payload, raw, err := decodePayload(encPayload)
	if err != nil {
		return nil, err
	}

	// expiry first, signature last
	if s.now().UnixMilli() > payload.ExpiresAt {
		return nil, ErrTokenExpired
	}

	if requestOrigin != "" && NormalizeOrigin(requestOrigin) != payload.Origin {
		return nil, fmt.Errorf("%w: token bound to %q", ErrOriginMismatch, payload.Origin)
	}

	signature, err := decodeSegment(encSignature)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(signature, s.sign(raw)) {
		return nil, ErrBadSignature
	}

	return payload, nil
}

func (s *Server) sign(raw []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(raw)
	return mac.Sum(nil)
}
