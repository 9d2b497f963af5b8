package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenExpired marks tokens that validated but are past their expiry.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens that failed signature or format checks.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeWrongTokenType marks tokens presented to a check for another kind.
	TextCodeWrongTokenType = "WRONG_TOKEN_TYPE"
)

// ErrInvalidCredentials is returned for unknown emails and password mismatches
// alike so callers never learn which of the two checks failed.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for well-signed tokens past their expiry.
// Recoverable by re-authenticating, unlike ErrTokenMalformed.
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token fails signature or format
// validation. Never collapsed into a plain "invalid" result so audit
// collaborators can tell forged input from normal expiry.
var ErrTokenMalformed = goerrors.New("token is malformed or unsigned", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongTokenType is returned when an otherwise valid token is presented to
// a check expecting a different token kind.
var ErrWrongTokenType = goerrors.New("token kind not accepted by this check", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongTokenType).
	WithCode(goerrors.CodeUnauthorized)

// ErrMemberNotFound is returned when an operation requires an existing member
// record and none can be resolved.
var ErrMemberNotFound = goerrors.New("member not found", goerrors.CategoryNotFound).
	WithTextCode("MEMBER_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrMemberNotConfirmed is returned when the confirmation oracle reports the
// account email has not been confirmed yet.
var ErrMemberNotConfirmed = goerrors.New("member must be confirmed before managing a password", goerrors.CategoryValidation).
	WithTextCode("MEMBER_NOT_CONFIRMED").
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordAlreadySet is returned when the initial password setup runs for a
// member that already completed it. The operation is not idempotent: silently
// overwriting a password from a temporary-token flow would be an escalation path.
var ErrPasswordAlreadySet = goerrors.New("password has already been set", goerrors.CategoryConflict).
	WithTextCode("PASSWORD_ALREADY_SET").
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordNotSet is returned when a password change is requested for a
// member that never completed the initial setup.
var ErrPasswordNotSet = goerrors.New("no password set for this member", goerrors.CategoryValidation).
	WithTextCode("PASSWORD_NOT_SET").
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString rejects empty passwords before they reach the hasher.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithTextCode("EMPTY_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the low-level bcrypt mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsWrongTokenTypeError will check for token kind mismatches
func IsWrongTokenTypeError(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, ErrWrongTokenType)
}
