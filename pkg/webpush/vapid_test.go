package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyPEM(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	encoded := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	return key, string(encoded)
}

func TestNewSignerRejectsGarbage(t *testing.T) {
	_, err := NewSigner("not a key", "mailto:admin@example.com")
	require.Error(t, err)

	var keyErr *KeyFormatError
	assert.True(t, errors.As(err, &keyErr))
}

func TestNewSignerHandlesEscapedNewlines(t *testing.T) {
	_, keyPEM := generateKeyPEM(t)

	// Env files often carry the key on one line with literal \n sequences.
	flattened := strings.ReplaceAll(keyPEM, "\n", `\n`)

	signer, err := NewSigner(flattened, "mailto:admin@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, signer.PublicKey())
}

func TestNewSignerParsesSEC1Key(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyPEM := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))

	_, err = NewSigner(keyPEM, "mailto:admin@example.com")
	require.NoError(t, err)
}

func TestAssertionClaims(t *testing.T) {
	key, keyPEM := generateKeyPEM(t)

	signer, err := NewSigner(keyPEM, "mailto:admin@example.com")
	require.NoError(t, err)

	issuedAt := time.Now().UTC().Truncate(time.Second)
	signer.now = func() time.Time { return issuedAt }

	token, err := signer.Assertion("https://fcm.googleapis.com")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodECDSA{}, token.Method)
		return key.Public(), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "https://fcm.googleapis.com", claims["aud"])
	assert.Equal(t, "mailto:admin@example.com", claims["sub"])
	assert.Equal(t, float64(issuedAt.Add(12*time.Hour).Unix()), claims["exp"])
}

func TestAssertionCachedPerAudience(t *testing.T) {
	_, keyPEM := generateKeyPEM(t)

	signer, err := NewSigner(keyPEM, "mailto:admin@example.com")
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	first, err := signer.Assertion("https://fcm.googleapis.com")
	require.NoError(t, err)
	second, err := signer.Assertion("https://fcm.googleapis.com")
	require.NoError(t, err)
	assert.Equal(t, first, second, "same audience reuses the cached assertion")

	other, err := signer.Assertion("https://updates.push.services.mozilla.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "audiences get distinct assertions")

	// Within an hour of expiry the assertion must be regenerated.
	now = now.Add(11*time.Hour + 30*time.Minute)
	refreshed, err := signer.Assertion("https://fcm.googleapis.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, refreshed)
}
