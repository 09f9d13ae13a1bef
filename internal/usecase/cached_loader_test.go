package usecase

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/pkg/metrics"
)

func TestCachedLoader_MissThenHit(t *testing.T) {
	next := &fakeLoader{body: memorialPage}
	m := metrics.New(prometheus.NewRegistry())
	l := NewCachedLoader(next, newFakeCache(), 0, m, nil)

	first, err := l.Load(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "http", first.Source)

	second, err := l.Load(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, memorialPage, second.Body)
	assert.Equal(t, 1, next.calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestCachedLoader_EvictForcesRefetch(t *testing.T) {
	next := &fakeLoader{body: memorialPage}
	l := NewCachedLoader(next, newFakeCache(), 0, nil, nil)

	_, err := l.Load(context.Background(), testURL)
	require.NoError(t, err)
	require.NoError(t, l.Evict(context.Background(), testURL))
	_, err = l.Load(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedLoader_CacheErrorsFallThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errBoom
	cache.putErr = errBoom
	next := &fakeLoader{body: memorialPage}
	l := NewCachedLoader(next, cache, 0, nil, nil)

	doc, err := l.Load(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "http", doc.Source)
}

func TestCachedLoader_LoaderErrorNotCached(t *testing.T) {
	cache := newFakeCache()
	l := NewCachedLoader(&fakeLoader{err: repository.ErrFetchFailed}, cache, 0, nil, nil)

	_, err := l.Load(context.Background(), testURL)
	assert.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.Empty(t, cache.pages)
}
