package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/hkdf"
)

// decryptAsClient reverses the aes128gcm encoding the way a browser would,
// so the round trip proves interoperability rather than self-consistency.
func decryptAsClient(t *testing.T, body []byte, clientKey *ecdh.PrivateKey, authSecret []byte) []byte {
	t.Helper()

	require.Greater(t, len(body), 21)
	salt := body[:16]
	rs := binary.BigEndian.Uint32(body[16:20])
	assert.Equal(t, uint32(4096), rs)

	idLen := int(body[20])
	require.Equal(t, 65, idLen, "keyid must be an uncompressed P-256 point")
	require.GreaterOrEqual(t, len(body), 21+idLen)

	serverPub, err := ecdh.P256().NewPublicKey(body[21 : 21+idLen])
	require.NoError(t, err)
	ciphertext := body[21+idLen:]

	sharedSecret, err := clientKey.ECDH(serverPub)
	require.NoError(t, err)

	clientPubBytes := clientKey.PublicKey().Bytes()
	keyInfo := append([]byte("WebPush: info\x00"), clientPubBytes...)
	keyInfo = append(keyInfo, serverPub.Bytes()...)

	prkKey := hkdf.Extract(sha256.New, sharedSecret, authSecret)
	ikm := make([]byte, 32)
	_, err = io.ReadFull(hkdf.Expand(sha256.New, prkKey, keyInfo), ikm)
	require.NoError(t, err)

	prk := hkdf.Extract(sha256.New, ikm, salt)
	contentKey := make([]byte, 16)
	_, err = io.ReadFull(hkdf.Expand(sha256.New, prk, []byte("Content-Encoding: aes128gcm\x00")), contentKey)
	require.NoError(t, err)
	nonce := make([]byte, 12)
	_, err = io.ReadFull(hkdf.Expand(sha256.New, prk, []byte("Content-Encoding: nonce\x00")), nonce)
	require.NoError(t, err)

	block, err := aes.NewCipher(contentKey)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	record, err := gcm.Open(nil, nonce, ciphertext, nil)
	require.NoError(t, err)

	require.NotEmpty(t, record)
	require.Equal(t, byte(0x02), record[len(record)-1], "last record delimiter")
	return record[:len(record)-1]
}

func TestEncryptPayloadRoundTrip(t *testing.T) {
	clientKey, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	require.NoError(t, err)

	p256dh := base64.RawURLEncoding.EncodeToString(clientKey.PublicKey().Bytes())
	auth := base64.RawURLEncoding.EncodeToString(authSecret)

	plaintext := []byte(`{"title":"⏰ Приближается дедлайн!","body":"Задача 'Курсовая' должна быть выполнена до 01.06.2024 23:59"}`)

	body, err := encryptPayload(plaintext, p256dh, auth)
	require.NoError(t, err)

	assert.Equal(t, plaintext, decryptAsClient(t, body, clientKey, authSecret))
}

func TestEncryptPayloadAcceptsStandardBase64Keys(t *testing.T) {
	clientKey, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	require.NoError(t, err)

	// Some browsers hand out padded standard base64 instead of base64url.
	p256dh := base64.StdEncoding.EncodeToString(clientKey.PublicKey().Bytes())
	auth := base64.StdEncoding.EncodeToString(authSecret)

	body, err := encryptPayload([]byte("hello"), p256dh, auth)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), decryptAsClient(t, body, clientKey, authSecret))
}

func TestEncryptPayloadRejectsBadKeys(t *testing.T) {
	_, err := encryptPayload([]byte("hello"), "!!!", "AAAA")
	assert.Error(t, err)

	// A valid base64 string that is not a P-256 point.
	bogus := base64.RawURLEncoding.EncodeToString(make([]byte, 65))
	_, err = encryptPayload([]byte("hello"), bogus, "AAAA")
	assert.Error(t, err)
}
