package qrimage

import (
	"context"

	qr "github.com/skip2/go-qrcode"

	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
)

// LocalProvider encodes the payload text without calling the NBS service.
type LocalProvider struct{}

// NewLocalProvider constructs a LocalProvider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Fetch encodes the pipe-delimited payload with medium error correction.
func (LocalProvider) Fetch(ctx context.Context, payload ipsqr.Payload, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return qr.Encode(payload.Text(), qr.Medium, size)
}
