package webpush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Subscription is the delivery address and client key material registered
// by the browser. The keys are opaque to us beyond encryption input.
type Subscription struct {
	Endpoint  string
	P256dhKey string
	AuthKey   string
}

// Client delivers encrypted push messages to subscription endpoints,
// authenticated with VAPID assertions from the Signer.
type Client struct {
	signer     *Signer
	httpClient *http.Client
	dialer     *net.Dialer
	ttl        int // seconds the push service may retain the message
}

// NewClient creates a push delivery client around the given signer.
func NewClient(signer *Signer) *Client {
	return &Client{
		signer:     signer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dialer:     &net.Dialer{Timeout: 5 * time.Second},
		ttl:        86400,
	}
}

// Send encrypts payload for the subscription and POSTs it to the endpoint.
// Errors are categorized: *TransportError for network failures,
// *ProtocolError for non-2xx responses, *SigningError/*KeyFormatError for
// assertion problems.
func (c *Client) Send(ctx context.Context, sub Subscription, payload []byte) error {
	endpoint, err := url.Parse(sub.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %v", err)
	}

	// Connectivity preflight: a dead network should fail fast instead of
	// stalling the scheduler tick on a slow HTTP timeout.
	if err := c.preflight(ctx, endpoint); err != nil {
		return &TransportError{Err: err}
	}

	audience := endpoint.Scheme + "://" + endpoint.Host
	assertion, err := c.signer.Assertion(audience)
	if err != nil {
		return err
	}

	body, err := encryptPayload(payload, sub.P256dhKey, sub.AuthKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Encoding", "aes128gcm")
	req.Header.Set("TTL", fmt.Sprintf("%d", c.ttl))
	req.Header.Set("Urgency", "normal")
	req.Header.Set("Authorization", fmt.Sprintf("vapid t=%s, k=%s", assertion, c.signer.PublicKey()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProtocolError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	logrus.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"audience": audience,
	}).Debug("Push message accepted")
	return nil
}

// preflight resolves the endpoint host and probes TCP reachability.
func (c *Client) preflight(ctx context.Context, endpoint *url.URL) error {
	host := endpoint.Hostname()

	if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
		return fmt.Errorf("DNS resolution failed for %s: %v", host, err)
	}

	port := endpoint.Port()
	if port == "" {
		if endpoint.Scheme == "http" {
			port = "80"
		} else {
			port = "443"
		}
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("endpoint unreachable: %v", err)
	}
	conn.Close()
	return nil
}
