package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService issues and validates the three token kinds. Every validation
// is kind-specific: a token is never valid outside the exact kind and purpose
// it was issued for.
type TokenService interface {
	IssueAccessToken(subject string) (string, error)
	IssueRefreshToken(subject string) (string, error)
	IssueTemporaryToken(email string, memberID uuid.UUID) (string, error)
	IsAccessTokenValid(tokenString string) (bool, error)
	IsRefreshTokenValid(tokenString string) (bool, error)
	ValidateTemporaryToken(tokenString, expectedEmail string) (bool, error)
	ExtractSubject(tokenString string) (string, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	codec        *Codec
	decoder      TokenDecoder
	accessTTL    time.Duration
	refreshTTL   time.Duration
	temporaryTTL time.Duration
	now          func() time.Time
	logger       Logger
}

// TokenServiceOption customizes token service construction.
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenServiceClock injects a custom clock (useful for tests). The codec
// keeps its own clock; this one drives expiry checks only.
func WithTokenServiceClock(clock func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenServiceLogger overrides the logger used by the service.
func WithTokenServiceLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// WithTokenServiceDecoder overrides the decoder used for validation, e.g. a
// MultiTokenCodec spanning current and previous signing keys. Issuance always
// uses the primary codec.
func WithTokenServiceDecoder(decoder TokenDecoder) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if decoder != nil {
			ts.decoder = decoder
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(codec *Codec, cfg Config, opts ...TokenServiceOption) TokenService {
	ts := &TokenServiceImpl{
		codec:        codec,
		decoder:      codec,
		accessTTL:    cfg.GetAccessTokenTTL(),
		refreshTTL:   cfg.GetRefreshTokenTTL(),
		temporaryTTL: cfg.GetTemporaryTokenTTL(),
		now:          time.Now,
		logger:       defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// IssueAccessToken issues a short-lived access token for the subject email.
// Access tokens carry no extra claims.
func (ts *TokenServiceImpl) IssueAccessToken(subject string) (string, error) {
	return ts.codec.Encode(subject, KindAccess, ts.accessTTL)
}

// IssueRefreshToken issues a refresh token for the subject email.
func (ts *TokenServiceImpl) IssueRefreshToken(subject string) (string, error) {
	return ts.codec.Encode(subject, KindRefresh, ts.refreshTTL)
}

// IssueTemporaryToken issues a minutes-scale token scoped to the password
// setup flow. The member id rides along so the setup flow can cross-reference
// the membership record without a second lookup round-trip.
func (ts *TokenServiceImpl) IssueTemporaryToken(email string, memberID uuid.UUID) (string, error) {
	return ts.codec.Encode(email, KindTemporary, ts.temporaryTTL,
		WithPurpose(PurposePasswordSetup),
		WithMemberID(memberID),
	)
}

// IsAccessTokenValid reports whether the token is a well-signed, unexpired
// access token. Signature and format failures surface as errors, never as a
// silent false; expiry surfaces as ErrTokenExpired so callers can tell the
// two apart.
func (ts *TokenServiceImpl) IsAccessTokenValid(tokenString string) (bool, error) {
	_, err := ts.validateKind(tokenString, KindAccess)
	if err != nil {
		if goerrors.Is(err, ErrTokenExpired) {
			return false, ErrTokenExpired
		}
		return false, err
	}
	return true, nil
}

// IsRefreshTokenValid is IsAccessTokenValid for refresh tokens. A well-signed
// token of any other kind fails with ErrWrongTokenType: an access token must
// never be accepted where a refresh token is expected.
func (ts *TokenServiceImpl) IsRefreshTokenValid(tokenString string) (bool, error) {
	_, err := ts.validateKind(tokenString, KindRefresh)
	if err != nil {
		if goerrors.Is(err, ErrTokenExpired) {
			return false, ErrTokenExpired
		}
		return false, err
	}
	return true, nil
}

// ValidateTemporaryToken reports whether the token is a live temporary token
// issued for exactly expectedEmail with the password setup purpose. Expired
// tokens degrade to false gracefully; malformed or forged tokens raise.
func (ts *TokenServiceImpl) ValidateTemporaryToken(tokenString, expectedEmail string) (bool, error) {
	claims, err := ts.validateKind(tokenString, KindTemporary)
	if err != nil {
		if goerrors.Is(err, ErrTokenExpired) {
			return false, nil
		}
		if goerrors.Is(err, ErrWrongTokenType) {
			return false, nil
		}
		return false, err
	}

	if claims.Purpose != PurposePasswordSetup {
		return false, nil
	}

	if claims.Subject() != expectedEmail {
		ts.logger.Warn("temporary token subject mismatch, expected %s", expectedEmail)
		return false, nil
	}

	return true, nil
}

// ExtractSubject returns the subject email of a well-signed token. Subject
// extraction does not imply validity: it succeeds on expired tokens and only
// fails on malformed or unsigned input.
func (ts *TokenServiceImpl) ExtractSubject(tokenString string) (string, error) {
	claims, err := ts.decoder.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// validateKind decodes the token, checks the kind claim, then checks expiry.
// The kind check runs first so a wrong-kind token reports WrongTokenType
// whether or not it also expired.
func (ts *TokenServiceImpl) validateKind(tokenString string, want TokenKind) (*TokenClaims, error) {
	claims, err := ts.decoder.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if kind := claims.Kind(); kind != want {
		ts.logger.Warn("token kind rejected, want %s got %s", want.String(), kind.String())
		return nil, ErrWrongTokenType
	}

	if claims.ExpiredAt(ts.now()) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
