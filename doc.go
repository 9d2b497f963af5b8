// Package auth provides the credential core for a membership service: signed
// bearer token issuance and validation, the authentication/refresh protocol,
// and the credential-gated password lifecycle.
//
// Tokens:
//   - Three kinds are issued from a single HMAC-SHA-256 codec: access,
//     refresh, and temporary (password setup only). The kind rides in the
//     claims and every validation is kind-specific, so a token is never
//     accepted outside the exact kind and purpose it was issued for.
//   - Decoding verifies signatures only; expiry is an explicit caller check.
//     Expired and forged tokens therefore surface as distinct error classes.
//
// Password lifecycle:
//   - Members move no-password -> password-set exactly once. SetupPasswordHandler
//     gates the transition behind a temporary token plus the external
//     confirmation oracle; ChangePasswordHandler additionally requires the
//     current password. Both run inside a repository transaction.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     password handlers to describe login, refresh, and password events.
//     Sinks run best-effort (errors are logged) so you can forward to a
//     database or queue without blocking authentication.
//
// The middleware/ratelimit subpackage guards these flows with a fixed-window
// per-client budget backed by an injectable store.
package auth
