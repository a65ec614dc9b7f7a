package qrimage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	qr "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
)

func samplePayload() ipsqr.Payload {
	return ipsqr.Payload{
		IdentificationCode: ipsqr.IdentificationCode,
		Version:            ipsqr.Version,
		CharacterSet:       ipsqr.CharacterSet,
		Account:            "160000000054891267",
		Recipient:          "Stambena zajednica\r\nMarka Čelebonovića 73",
		Amount:             "RSD3500,00",
		ServiceCode:        ipsqr.ServiceCode,
		Purpose:            "Održavanje zgrade",
		Reference:          "0503",
	}
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	png, err := qr.Encode("test", qr.Low, 64)
	require.NoError(t, err)
	return png
}

func TestRemoteProvider_PostsPayload(t *testing.T) {
	png := samplePNG(t)
	var gotPath, gotAccept, gotLang string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotLang = r.URL.Query().Get("lang")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer server.Close()

	provider, err := NewRemoteProvider(server.URL+"/QRcode/api/qr/v1/gen/", WithLanguage("sr_RS_Latn"))
	require.NoError(t, err)

	img, err := provider.Fetch(context.Background(), samplePayload(), 300)
	require.NoError(t, err)
	assert.Equal(t, png, img)
	assert.Equal(t, "/QRcode/api/qr/v1/gen/300", gotPath)
	assert.Equal(t, "image/png", gotAccept)
	assert.Equal(t, "sr_RS_Latn", gotLang)
	assert.Equal(t, "160000000054891267", gotBody["R"])
	assert.Equal(t, "RSD3500,00", gotBody["I"])
	assert.Equal(t, "0503", gotBody["RO"])
}

func TestRemoteProvider_UpstreamError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"s":{"code":1,"desc":"R: invalid"}}`))
	}))
	defer server.Close()

	provider, err := NewRemoteProvider(server.URL)
	require.NoError(t, err)

	_, err = provider.Fetch(context.Background(), samplePayload(), 300)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "R: invalid")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "no retry at this layer")
}

func TestRemoteProvider_NonImageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":{"code":0}}`))
	}))
	defer server.Close()

	provider, err := NewRemoteProvider(server.URL)
	require.NoError(t, err)

	_, err = provider.Fetch(context.Background(), samplePayload(), 300)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusOK, upstream.StatusCode)
}

func TestRemoteProvider_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	provider, err := NewRemoteProvider(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = provider.Fetch(context.Background(), samplePayload(), 300)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRemoteProvider_Validation(t *testing.T) {
	_, err := NewRemoteProvider("")
	require.Error(t, err)

	provider, err := NewRemoteProvider(DefaultBaseURL)
	require.NoError(t, err)
	_, err = provider.Fetch(context.Background(), samplePayload(), 0)
	require.Error(t, err)
}

func TestLocalProvider_EncodesPNG(t *testing.T) {
	img, err := NewLocalProvider().Fetch(context.Background(), samplePayload(), 256)
	require.NoError(t, err)
	assert.Equal(t, "image/png", http.DetectContentType(img))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLocalProvider().Fetch(ctx, samplePayload(), 256)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteProvider_WithHTTPClient(t *testing.T) {
	png := samplePNG(t)
	var gotPath, gotAccept string
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write(png)
	}))
	defer server.Close()

	untrusted, err := NewRemoteProvider(server.URL)
	require.NoError(t, err)
	_, err = untrusted.Fetch(context.Background(), samplePayload(), 300)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)

	provider, err := NewRemoteProvider(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	img, err := provider.Fetch(context.Background(), samplePayload(), 250)
	require.NoError(t, err)
	assert.Equal(t, png, img)
	assert.Equal(t, "/250", gotPath)
	assert.Equal(t, "image/png", gotAccept)
}
