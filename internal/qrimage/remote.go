package qrimage

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
)

const (
	// DefaultBaseURL is the NBS IPS QR generator endpoint.
	DefaultBaseURL = "https://nbs.rs/QRcode/api/qr/v1/gen"

	maxErrorBody = 512
)

// RemoteProvider asks the NBS generator service for the QR image.
// It makes exactly one request per call; callers own any retry policy.
type RemoteProvider struct {
	client *resty.Client
	lang   string
}

// RemoteOption configures the remote provider.
type RemoteOption func(*RemoteProvider)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(p *RemoteProvider) {
		if timeout > 0 {
			p.client.SetTimeout(timeout)
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(p *RemoteProvider) {
		if client != nil {
			p.client = resty.NewWithClient(client).
				SetBaseURL(p.client.BaseURL).
				SetHeader("Accept", "image/png")
		}
	}
}

// WithLanguage sets the lang query parameter understood by the NBS service.
func WithLanguage(lang string) RemoteOption {
	return func(p *RemoteProvider) {
		p.lang = lang
	}
}

// NewRemoteProvider constructs a provider for baseURL.
func NewRemoteProvider(baseURL string, opts ...RemoteOption) (*RemoteProvider, error) {
	if baseURL == "" {
		return nil, errors.New("qrimage: empty base url")
	}
	p := &RemoteProvider{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(10 * time.Second).
			SetHeader("Accept", "image/png"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Fetch posts payload as JSON and returns the PNG body.
func (p *RemoteProvider) Fetch(ctx context.Context, payload ipsqr.Payload, size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("qrimage: size must be positive")
	}
	req := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if p.lang != "" {
		req.SetQueryParam("lang", p.lang)
	}

	resp, err := req.Post("/" + strconv.Itoa(size))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: clip(resp.String(), maxErrorBody)}
	}
	body := resp.Body()
	if ct := http.DetectContentType(body); ct != "image/png" {
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: "unexpected content " + ct}
	}
	return body, nil
}

func clip(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
