package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind is the resolved kind of a decoded token. Business code switches
// on TokenKind at the decode boundary instead of re-checking the raw claim
// string at every call site.
type TokenKind int

const (
	// KindUnknown covers unrecognized type claims on otherwise valid tokens.
	KindUnknown TokenKind = iota
	// KindAccess is the short-lived credential authorizing API requests.
	// Access tokens carry no type claim.
	KindAccess
	// KindRefresh is the longer-lived credential used solely to obtain new
	// access tokens.
	KindRefresh
	// KindTemporary is the single-purpose credential scoped to the password
	// setup flow.
	KindTemporary
)

func (k TokenKind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return claimTypeRefresh
	case KindTemporary:
		return claimTypeTemporary
	default:
		return "unknown"
	}
}

const (
	claimTypeRefresh   = "refresh"
	claimTypeTemporary = "temporary"

	// PurposePasswordSetup is the only purpose claim issued for temporary tokens.
	PurposePasswordSetup = "password_setup"
)

// TokenClaims is the claim set carried by every token this package issues.
// Subject is always the member email.
type TokenClaims struct {
	jwt.RegisteredClaims
	Type     string `json:"typ,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
	MemberID string `json:"member_id,omitempty"`
}

// Kind resolves the type claim into a TokenKind. A missing type claim means
// an access token; anything unrecognized maps to KindUnknown so it can never
// satisfy a kind-specific check.
func (c *TokenClaims) Kind() TokenKind {
	switch c.Type {
	case "":
		return KindAccess
	case claimTypeRefresh:
		return KindRefresh
	case claimTypeTemporary:
		return KindTemporary
	default:
		return KindUnknown
	}
}

// Subject returns the subject claim, the member email.
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// MemberUUID parses the member_id claim carried by temporary tokens.
func (c *TokenClaims) MemberUUID() (uuid.UUID, error) {
	return uuid.Parse(c.MemberID)
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiredAt reports whether the token is past its expiry at the given
// instant. Decoding never performs this check; callers apply it explicitly
// so expired and forged tokens stay distinguishable.
func (c *TokenClaims) ExpiredAt(now time.Time) bool {
	exp := c.Expires()
	if exp.IsZero() {
		return true
	}
	return !now.Before(exp)
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
