// Package qrimage turns IPS QR payloads into PNG images.
package qrimage

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
)

//go:generate mockgen -source=provider.go -destination=mock/provider_mock.go -package=mock

// Provider renders a payload as a square PNG of size pixels.
type Provider interface {
	Fetch(ctx context.Context, payload ipsqr.Payload, size int) ([]byte, error)
}

// UpstreamError is returned when the QR service answers with a non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("qrimage: upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("qrimage: upstream status %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps a transport failure talking to the QR service.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "qrimage: network: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("qrimage: disabled")

// Disabled never produces an image; slips print with a blank QR area.
type Disabled struct{}

func (Disabled) Fetch(context.Context, ipsqr.Payload, int) ([]byte, error) {
	return nil, ErrDisabled
}
