package webpush

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// assertionTTL bounds the lifetime of a signed VAPID assertion. Push
// services reject anything above 24h; 12h matches what we hand out.
const assertionTTL = 12 * time.Hour

// Signer produces the VAPID authorization material for push requests:
// a short-lived ES256 JWT bound to the push service origin plus the
// base64url-encoded public key it can be verified with.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	publicKey  string // uncompressed P-256 point, base64url without padding
	subject    string

	mu    sync.Mutex
	cache map[string]cachedAssertion

	now func() time.Time
}

type cachedAssertion struct {
	token     string
	expiresAt time.Time
}

// NewSigner parses a PEM-encoded EC P-256 private key. The key value may
// carry literal "\n" sequences when it comes from an env file.
func NewSigner(privateKeyPEM, subject string) (*Signer, error) {
	cleaned := strings.ReplaceAll(privateKeyPEM, `\n`, "\n")

	block, _ := pem.Decode([]byte(cleaned))
	if block == nil {
		return nil, &KeyFormatError{Err: fmt.Errorf("no PEM block found")}
	}

	var key *ecdsa.PrivateKey
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		ecKey, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, &KeyFormatError{Err: fmt.Errorf("PKCS8 key is not an EC key")}
		}
		key = ecKey
	} else if ecKey, ecErr := x509.ParseECPrivateKey(block.Bytes); ecErr == nil {
		key = ecKey
	} else {
		return nil, &KeyFormatError{Err: err}
	}

	ecdhPub, err := key.PublicKey.ECDH()
	if err != nil {
		return nil, &KeyFormatError{Err: err}
	}

	return &Signer{
		privateKey: key,
		publicKey:  base64.RawURLEncoding.EncodeToString(ecdhPub.Bytes()),
		subject:    subject,
		cache:      make(map[string]cachedAssertion),
		now:        time.Now,
	}, nil
}

// PublicKey returns the base64url-encoded uncompressed public key that
// accompanies every assertion ("k=" parameter).
func (s *Signer) PublicKey() string {
	return s.publicKey
}

// Subject returns the configured contact URI.
func (s *Signer) Subject() string {
	return s.subject
}

// Assertion returns a signed VAPID JWT for the given audience (the
// scheme+host of the push endpoint). Assertions are cached per audience and
// regenerated once they get close to expiry; they are never persisted.
func (s *Signer) Assertion(audience string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if cached, ok := s.cache[audience]; ok && now.Before(cached.expiresAt.Add(-time.Hour)) {
		return cached.token, nil
	}

	expiresAt := now.Add(assertionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"aud": audience,
		"exp": expiresAt.Unix(),
		"sub": s.subject,
	})

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", &SigningError{Err: err}
	}

	s.cache[audience] = cachedAssertion{token: signed, expiresAt: expiresAt}
	return signed, nil
}
