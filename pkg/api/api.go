// Package api defines the wire types of the MenuLens HTTP API, shared by
// the server handlers and the Go client SDK.
package api

// SessionTokenHeader carries the session token on protected requests.
const SessionTokenHeader = "x-session-token"

// ErrorResponse is the body of every non-2xx response. Messages are
// intentionally generic; specifics are logged server-side only.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is returned by POST /api/session. ExpiresIn is the
// token lifetime in seconds.
type SessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// DeleteResponse is returned by the DELETE endpoints.
type DeleteResponse struct {
	Success bool `json:"success"`
}
