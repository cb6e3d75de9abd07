package webpush

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubscription(t *testing.T, endpoint string) Subscription {
	t.Helper()

	clientKey, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	require.NoError(t, err)

	return Subscription{
		Endpoint:  endpoint,
		P256dhKey: base64.RawURLEncoding.EncodeToString(clientKey.PublicKey().Bytes()),
		AuthKey:   base64.RawURLEncoding.EncodeToString(authSecret),
	}
}

func TestSendSuccess(t *testing.T) {
	_, keyPEM := generateKeyPEM(t)
	signer, err := NewSigner(keyPEM, "mailto:admin@example.com")
	require.NoError(t, err)

	var gotHeaders http.Header
	var gotBodyLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		gotBodyLen = len(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(signer)
	err = client.Send(context.Background(), testSubscription(t, srv.URL), []byte(`{"title":"test"}`))
	require.NoError(t, err)

	assert.Equal(t, "aes128gcm", gotHeaders.Get("Content-Encoding"))
	assert.Equal(t, "86400", gotHeaders.Get("TTL"))
	assert.Equal(t, "normal", gotHeaders.Get("Urgency"))

	auth := gotHeaders.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "vapid t="))
	assert.Contains(t, auth, ", k="+signer.PublicKey())

	// salt(16) + rs(4) + idlen(1) + keyid(65) + ciphertext
	assert.Greater(t, gotBodyLen, 86)
}

func TestSendProtocolError(t *testing.T) {
	_, keyPEM := generateKeyPEM(t)
	signer, err := NewSigner(keyPEM, "mailto:admin@example.com")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "subscription expired", http.StatusGone)
	}))
	defer srv.Close()

	client := NewClient(signer)
	err = client.Send(context.Background(), testSubscription(t, srv.URL), []byte("payload"))
	require.Error(t, err)

	var protoErr *ProtocolError
	require.True(t, errors.As(err, &protoErr))
	assert.Equal(t, http.StatusGone, protoErr.StatusCode)
	assert.Contains(t, protoErr.Body, "subscription expired")
}

func TestSendTransportError(t *testing.T) {
	_, keyPEM := generateKeyPEM(t)
	signer, err := NewSigner(keyPEM, "mailto:admin@example.com")
	require.NoError(t, err)

	// Grab an address nothing is listening on anymore.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewClient(signer)
	err = client.Send(context.Background(), testSubscription(t, endpoint), []byte("payload"))
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr), "preflight must fail fast on a dead endpoint")
}
