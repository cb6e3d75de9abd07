package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// recordSize is the single-record size we advertise in the aes128gcm header.
const recordSize = 4096

// encryptPayload encrypts a message for the subscription's client keys per
// RFC 8291 (aes128gcm content encoding): ECDH over P-256 against the
// client's p256dh key, HKDF-SHA256 key derivation salted with the client
// auth secret, one AES-128-GCM record. The returned body already carries
// the salt/rs/keyid header the push service expects.
func encryptPayload(plaintext []byte, p256dh, auth string) ([]byte, error) {
	clientPubBytes, err := decodeSubscriptionKey(p256dh)
	if err != nil {
		return nil, fmt.Errorf("invalid p256dh key: %v", err)
	}
	authSecret, err := decodeSubscriptionKey(auth)
	if err != nil {
		return nil, fmt.Errorf("invalid auth secret: %v", err)
	}

	curve := ecdh.P256()
	clientPub, err := curve.NewPublicKey(clientPubBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid p256dh key: %v", err)
	}

	serverKey, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	serverPubBytes := serverKey.PublicKey().Bytes()

	sharedSecret, err := serverKey.ECDH(clientPub)
	if err != nil {
		return nil, fmt.Errorf("ECDH agreement failed: %v", err)
	}

	// IKM = HKDF(salt=auth, ikm=ecdh_secret, info="WebPush: info"||0x00||ua_pub||as_pub)
	keyInfo := make([]byte, 0, 14+len(clientPubBytes)+len(serverPubBytes))
	keyInfo = append(keyInfo, []byte("WebPush: info\x00")...)
	keyInfo = append(keyInfo, clientPubBytes...)
	keyInfo = append(keyInfo, serverPubBytes...)

	prkKey := hkdf.Extract(sha256.New, sharedSecret, authSecret)
	ikm := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prkKey, keyInfo), ikm); err != nil {
		return nil, err
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	prk := hkdf.Extract(sha256.New, ikm, salt)
	contentKey := make([]byte, 16)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte("Content-Encoding: aes128gcm\x00")), contentKey); err != nil {
		return nil, err
	}
	nonce := make([]byte, 12)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte("Content-Encoding: nonce\x00")), nonce); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(contentKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	// Single record: plaintext followed by the 0x02 last-record delimiter.
	record := make([]byte, 0, len(plaintext)+1)
	record = append(record, plaintext...)
	record = append(record, 0x02)
	ciphertext := gcm.Seal(nil, nonce, record, nil)

	// Body header: salt(16) | rs(4) | idlen(1) | keyid(as_pub, 65)
	body := make([]byte, 0, 16+4+1+len(serverPubBytes)+len(ciphertext))
	body = append(body, salt...)
	body = binary.BigEndian.AppendUint32(body, recordSize)
	body = append(body, byte(len(serverPubBytes)))
	body = append(body, serverPubBytes...)
	body = append(body, ciphertext...)

	return body, nil
}

// decodeSubscriptionKey accepts both URL-safe and standard base64, padded or
// not - browsers are not consistent about what they hand out.
func decodeSubscriptionKey(value string) ([]byte, error) {
	normalized := strings.NewReplacer("+", "-", "/", "_").Replace(strings.TrimRight(value, "="))
	return base64.RawURLEncoding.DecodeString(normalized)
}
