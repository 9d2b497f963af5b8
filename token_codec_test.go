package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/ecclesiaflow/go-membership-auth"
	"github.com/google/uuid"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCodec_Encode(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	codec := auth.NewCodec(signingKey,
		auth.WithCodecIssuer("membership-auth"),
		auth.WithCodecAudience([]string{"ecclesiaflow"}),
		auth.WithCodecClock(fixedClock(issuedAt)),
	)

	t.Run("produces a three segment HMAC token", func(t *testing.T) {
		tokenString, err := codec.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.ParseWithClaims(tokenString, &auth.TokenClaims{}, func(token *jwt.Token) (any, error) {
			assert.Equal(t, "HS256", token.Method.Alg())
			return signingKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*auth.TokenClaims)
		assert.True(t, ok)
		assert.Equal(t, "alice@ecclesiaflow.com", claims.Subject())
		assert.Equal(t, "membership-auth", claims.Issuer)
		assert.Equal(t, jwt.ClaimStrings{"ecclesiaflow"}, claims.Audience)
		assert.Equal(t, issuedAt, claims.IssuedAt())
		assert.Equal(t, issuedAt.Add(time.Hour), claims.Expires())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("access tokens carry no type claim", func(t *testing.T) {
		tokenString, err := codec.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)

		claims, err := codec.Decode(tokenString)
		assert.NoError(t, err)
		assert.Empty(t, claims.Type)
		assert.Equal(t, auth.KindAccess, claims.Kind())
	})

	t.Run("refresh and temporary tokens carry their kind", func(t *testing.T) {
		refresh, err := codec.Encode("alice@ecclesiaflow.com", auth.KindRefresh, time.Hour)
		assert.NoError(t, err)

		claims, err := codec.Decode(refresh)
		assert.NoError(t, err)
		assert.Equal(t, auth.KindRefresh, claims.Kind())

		temporary, err := codec.Encode("alice@ecclesiaflow.com", auth.KindTemporary, time.Minute)
		assert.NoError(t, err)

		claims, err = codec.Decode(temporary)
		assert.NoError(t, err)
		assert.Equal(t, auth.KindTemporary, claims.Kind())
	})

	t.Run("claim options populate purpose and member id", func(t *testing.T) {
		memberID := uuid.New()
		tokenString, err := codec.Encode("alice@ecclesiaflow.com", auth.KindTemporary, time.Minute,
			auth.WithPurpose(auth.PurposePasswordSetup),
			auth.WithMemberID(memberID),
		)
		assert.NoError(t, err)

		claims, err := codec.Decode(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, auth.PurposePasswordSetup, claims.Purpose)

		parsed, err := claims.MemberUUID()
		assert.NoError(t, err)
		assert.Equal(t, memberID, parsed)
	})

	t.Run("rejects negative TTL", func(t *testing.T) {
		_, err := codec.Encode("alice@ecclesiaflow.com", auth.KindAccess, -time.Second)
		assert.Error(t, err)
	})
}

func TestCodec_Decode(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := auth.NewCodec(signingKey, auth.WithCodecClock(fixedClock(issuedAt)))

	t.Run("round trips its own tokens", func(t *testing.T) {
		tokenString, err := codec.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)

		claims, err := codec.Decode(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, "alice@ecclesiaflow.com", claims.Subject())
	})

	t.Run("returns claims for expired tokens", func(t *testing.T) {
		tokenString, err := codec.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Minute)
		assert.NoError(t, err)

		claims, err := codec.Decode(tokenString)
		assert.NoError(t, err)
		assert.True(t, claims.ExpiredAt(issuedAt.Add(2*time.Minute)))
		assert.False(t, claims.ExpiredAt(issuedAt.Add(30*time.Second)))
	})

	t.Run("rejects tokens signed with a different key", func(t *testing.T) {
		otherCodec := auth.NewCodec([]byte("some-other-key"))
		tokenString, err := otherCodec.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)

		_, err = codec.Decode(tokenString)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		_, err := codec.Decode("not-a-token")
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))

		_, err = codec.Decode("")
		assert.Error(t, err)
	})

	t.Run("rejects tampered payloads", func(t *testing.T) {
		tokenString, err := codec.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)

		tampered := tokenString[:len(tokenString)-4] + "AAAA"
		_, err = codec.Decode(tampered)
		assert.Error(t, err)
	})

	t.Run("rejects none-algorithm tokens", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "alice@ecclesiaflow.com",
		})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, err = codec.Decode(unsigned)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})
}

func TestMultiTokenCodec(t *testing.T) {
	currentKey := auth.NewCodec([]byte("current-signing-key"))
	previousKey := auth.NewCodec([]byte("previous-signing-key"))

	multi := auth.NewMultiTokenCodec(currentKey, previousKey)

	t.Run("accepts tokens from any configured key", func(t *testing.T) {
		fromCurrent, err := currentKey.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)
		fromPrevious, err := previousKey.Encode("bob@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)

		claims, err := multi.Decode(fromCurrent)
		assert.NoError(t, err)
		assert.Equal(t, "alice@ecclesiaflow.com", claims.Subject())

		claims, err = multi.Decode(fromPrevious)
		assert.NoError(t, err)
		assert.Equal(t, "bob@ecclesiaflow.com", claims.Subject())
	})

	t.Run("rejects tokens from an unknown key", func(t *testing.T) {
		retiredKey := auth.NewCodec([]byte("long-retired-key"))
		tokenString, err := retiredKey.Encode("alice@ecclesiaflow.com", auth.KindAccess, time.Hour)
		assert.NoError(t, err)

		_, err = multi.Decode(tokenString)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("empty decoder list rejects everything", func(t *testing.T) {
		empty := auth.NewMultiTokenCodec()
		_, err := empty.Decode("anything")
		assert.Error(t, err)
	})
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "access", auth.KindAccess.String())
	assert.Equal(t, "refresh", auth.KindRefresh.String())
	assert.Equal(t, "temporary", auth.KindTemporary.String())
	assert.Equal(t, "unknown", auth.KindUnknown.String())
}
