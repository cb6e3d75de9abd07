package webpush

import "fmt"

// KeyFormatError means the configured VAPID private key could not be parsed.
// This is a configuration defect: delivery is disabled for the attempt but
// the process keeps running.
type KeyFormatError struct {
	Err error
}

func (e *KeyFormatError) Error() string {
	return fmt.Sprintf("webpush: invalid VAPID key: %v", e.Err)
}

func (e *KeyFormatError) Unwrap() error { return e.Err }

// SigningError means the assertion could not be signed with a parsed key.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("webpush: failed to sign assertion: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// TransportError covers DNS, dial and other network-level failures. The
// caller retries only on the next scheduled tick, never inline.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webpush: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError means the push service answered with a non-2xx status.
// 404/410 indicate the subscription is gone; the row is deliberately not
// pruned here (see the service layer).
type ProtocolError struct {
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("webpush: push service rejected request: status=%d body=%q", e.StatusCode, e.Body)
}
