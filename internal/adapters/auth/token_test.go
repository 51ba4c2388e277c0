package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWT_IssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer(testSecret)
	verifier := NewJWTVerifier(testSecret)

	token, err := issuer.Issue("vault", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "vault", subject)
}

func TestJWT_VerifyWrongSecret(t *testing.T) {
	issuer := NewJWTIssuer(testSecret)
	verifier := NewJWTVerifier("other-secret")

	token, err := issuer.Issue("vault", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWT_VerifyExpiredToken(t *testing.T) {
	issuer := NewJWTIssuer(testSecret)
	verifier := NewJWTVerifier(testSecret)

	token, err := issuer.Issue("vault", -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWT_VerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "vault",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestJWT_VerifyGarbage(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)
	_, err := verifier.Verify("not.a.token")
	assert.Error(t, err)
}
