package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Credentials is the transient email/password pair presented on login.
// It exists only for the duration of an authentication call and is never
// persisted or logged.
type Credentials struct {
	Email    string
	Password string
}

// TokenPair is the access/refresh pair issued after authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*Member, error)
	IssueTokenPair(member *Member) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// MemberVerifier resolves and verifies members for the authenticator.
type MemberVerifier interface {
	VerifyMember(ctx context.Context, email, password string) (*Member, error)
	FindMemberByEmail(ctx context.Context, email string) (*Member, error)
}

// MemberLookup is the read side of the member store.
type MemberLookup interface {
	GetByEmail(ctx context.Context, email string) (*Member, error)
}

// ConfirmationOracle reports whether an account's email has been confirmed.
// A false result also covers unknown emails.
type ConfirmationOracle interface {
	IsConfirmed(ctx context.Context, email string) (bool, error)
}

// PasswordHasher hashes and verifies raw passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetTemporaryTokenTTL() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
