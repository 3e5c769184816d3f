/*
Package client is the Go SDK for the MenuLens API. It owns the client
side of the session lifecycle so callers never handle tokens directly.

A Client holds at most one session record: the session id, the signed
token, and its expiry. The record moves through three states:

  - Empty: no session yet, or the last issuance failed
  - Fresh: more than five minutes from expiry
  - Stale: within five minutes of expiry, or past it

[Client.EnsureValidSession] returns the cached token without a network
call while the record is Fresh. Otherwise it discards the record and
requests a new session from POST /api/session. Concurrent callers
arriving while an issuance is in flight share its result instead of
stacking duplicate requests; [Client.RefreshSession] is the explicit
path and always issues fresh, even while an automatic initialization is
in flight.

The business calls ([Client.Scan], [Client.History], [Client.Favorite],
and friends) obtain a token automatically, attach it as x-session-token,
and on a 401 refresh the session and retry exactly once. A failed
issuance leaves the record Empty; it never fabricates an expiry on an
existing record.
*/
package client
