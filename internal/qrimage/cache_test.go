package qrimage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
)

type countingProvider struct {
	img   []byte
	err   error
	calls int
}

func (p *countingProvider) Fetch(_ context.Context, _ ipsqr.Payload, _ int) ([]byte, error) {
	p.calls++
	return p.img, p.err
}

func TestCachedProvider_MissThenStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &countingProvider{img: []byte("png-bytes")}
	ttl := 24 * time.Hour

	cache, err := NewCachedProvider(inner, db, ttl)
	require.NoError(t, err)

	key := defaultCachePrefix + CacheKey(samplePayload(), 300)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, []byte("png-bytes"), ttl).SetVal("OK")

	img, err := cache.Fetch(context.Background(), samplePayload(), 300)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), img)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProvider_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &countingProvider{img: []byte("fresh")}

	cache, err := NewCachedProvider(inner, db, time.Hour, WithCachePrefix("test:"))
	require.NoError(t, err)

	mock.ExpectGet("test:" + CacheKey(samplePayload(), 300)).SetVal("cached")

	img, err := cache.Fetch(context.Background(), samplePayload(), 300)
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), img)
	assert.Zero(t, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedProvider_RedisDownStillFetches(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &countingProvider{img: []byte("png")}

	cache, err := NewCachedProvider(inner, db, time.Minute)
	require.NoError(t, err)

	key := defaultCachePrefix + CacheKey(samplePayload(), 200)
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, []byte("png"), time.Minute).SetErr(errors.New("connection refused"))

	img, err := cache.Fetch(context.Background(), samplePayload(), 200)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedProvider_InnerErrorNotCached(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &countingProvider{err: &UpstreamError{StatusCode: 500}}

	cache, err := NewCachedProvider(inner, db, time.Minute)
	require.NoError(t, err)

	mock.ExpectGet(defaultCachePrefix + CacheKey(samplePayload(), 300)).RedisNil()

	_, err = cache.Fetch(context.Background(), samplePayload(), 300)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKey_DependsOnPayloadAndSize(t *testing.T) {
	p := samplePayload()
	assert.Equal(t, CacheKey(p, 300), CacheKey(p, 300))
	assert.NotEqual(t, CacheKey(p, 300), CacheKey(p, 301))
	other := p
	other.Reference = "0604"
	assert.NotEqual(t, CacheKey(p, 300), CacheKey(other, 300))
}

func TestNewCachedProvider_Validation(t *testing.T) {
	db, _ := redismock.NewClientMock()
	_, err := NewCachedProvider(nil, db, time.Minute)
	assert.Error(t, err)
	_, err = NewCachedProvider(&countingProvider{}, nil, time.Minute)
	assert.Error(t, err)
	_, err = NewCachedProvider(&countingProvider{}, db, 0)
	assert.Error(t, err)
}
