package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/repository"
)

const memorialPage = `<html><head><script>
var findagrave = {"fullName": "<span class=\"prefix\">Dr.</span> Archibald Mathies", "firstName": "Archibald", "birthYear": 1890, "deathYear": 1963, "memorialId": 12345};
</script></head><body>
<div id="partBio">Born in Ohio.</div>
<p class="text-muted">Bio by: <a href="/user/1">Jane Roe</a></p>
<span id="plotValueLabel">Row 4</span>
</body></html>`

type fakeLoader struct {
	body  string
	err   error
	calls int
}

func (f *fakeLoader) Load(_ context.Context, url string) (*entity.RawDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &entity.RawDocument{URL: url, Body: f.body, StatusCode: 200, FetchedAt: time.Now(), Source: "http"}, nil
}

type fakeSink struct {
	err     error
	written []*entity.Record
}

func (f *fakeSink) Write(_ context.Context, _ string, rec *entity.Record) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, rec)
	return nil
}

type fakeCache struct {
	pages  map[string]string
	getErr error
	putErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, url string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	body, ok := f.pages[url]
	if !ok {
		return "", repository.ErrCacheMiss
	}
	return body, nil
}

func (f *fakeCache) Put(_ context.Context, url, body string, _ time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.pages[url] = body
	return nil
}

func (f *fakeCache) Evict(_ context.Context, url string) error {
	delete(f.pages, url)
	return nil
}

var errBoom = errors.New("boom")
