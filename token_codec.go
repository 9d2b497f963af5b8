package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenDecoder validates token signatures and extracts claims without tying
// callers to a specific signing key.
type TokenDecoder interface {
	Decode(tokenString string) (*TokenClaims, error)
}

// Codec builds and parses HMAC-SHA-256 signed tokens in the standard
// three-segment layout (header.payload.signature). It is a pure function of
// the signing key and clock and is safe for unsynchronized concurrent use.
type Codec struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	now        func() time.Time
	logger     Logger
}

// CodecOption customizes codec construction.
type CodecOption func(*Codec)

// WithCodecClock injects a custom clock (useful for tests).
func WithCodecClock(clock func() time.Time) CodecOption {
	return func(c *Codec) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithCodecIssuer sets the issuer claim stamped on every token.
func WithCodecIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// WithCodecAudience sets the audience claim stamped on every token.
func WithCodecAudience(audience []string) CodecOption {
	return func(c *Codec) {
		if len(audience) > 0 {
			aud := make(jwt.ClaimStrings, len(audience))
			copy(aud, audience)
			c.audience = aud
		}
	}
}

// WithCodecLogger overrides the logger used by the codec.
func WithCodecLogger(logger Logger) CodecOption {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCodec creates a codec for the given signing key.
func NewCodec(signingKey []byte, opts ...CodecOption) *Codec {
	c := &Codec{
		signingKey: signingKey,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// ClaimOption mutates the claim set before signing.
type ClaimOption func(*TokenClaims)

// WithPurpose sets the purpose claim carried by temporary tokens.
func WithPurpose(purpose string) ClaimOption {
	return func(c *TokenClaims) {
		c.Purpose = purpose
	}
}

// WithMemberID embeds the member id so the password setup flow can
// cross-reference the membership record without a second lookup.
func WithMemberID(id uuid.UUID) ClaimOption {
	return func(c *TokenClaims) {
		c.MemberID = id.String()
	}
}

// Encode signs a claim set for the subject. It always stamps iat with the
// codec clock and exp with iat+ttl, so the output is deterministic only under
// a fixed clock.
func (c *Codec) Encode(subject string, kind TokenKind, ttl time.Duration, opts ...ClaimOption) (string, error) {
	if ttl < 0 {
		return "", goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	now := c.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			Audience:  c.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	if kind != KindAccess {
		claims.Type = kind.String()
	}

	for _, opt := range opts {
		if opt != nil {
			opt(claims)
		}
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Decode verifies the signature and encoding of a token and returns its
// claims. It does NOT reject expired tokens; expiry is an explicit caller
// check so "valid but expired" and "forged or corrupt" remain separate
// error classes.
func (c *Codec) Decode(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			c.logger.Error("Codec decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		c.logger.Error("Codec decode could not map claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// MultiTokenCodec tries decoders in order until one verifies the signature.
// It treats malformed results as "try next" so outstanding tokens survive a
// signing key rotation, and returns the last malformed error if none match.
type MultiTokenCodec struct {
	decoders []TokenDecoder
}

// NewMultiTokenCodec filters nil decoders and returns a composite decoder.
func NewMultiTokenCodec(decoders ...TokenDecoder) *MultiTokenCodec {
	filtered := make([]TokenDecoder, 0, len(decoders))
	for _, d := range decoders {
		if d != nil {
			filtered = append(filtered, d)
		}
	}
	return &MultiTokenCodec{decoders: filtered}
}

// Decode satisfies the TokenDecoder interface.
func (m *MultiTokenCodec) Decode(tokenString string) (*TokenClaims, error) {
	var lastErr error
	for _, d := range m.decoders {
		claims, err := d.Decode(tokenString)
		if err == nil {
			return claims, nil
		}
		if IsMalformedError(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrTokenMalformed
}
