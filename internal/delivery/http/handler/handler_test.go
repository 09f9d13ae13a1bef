package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/extractor"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/internal/usecase"
)

const memorialURL = "https://www.findagrave.com/memorial/12345/archibald-mathies"

type fakeExtractor struct {
	report *usecase.Report
	err    error
	urls   []string
}

func (f *fakeExtractor) Run(_ context.Context, url string) (*usecase.Report, error) {
	f.urls = append(f.urls, url)
	return f.report, f.err
}

type fakeArchive struct {
	records map[string]*repository.ArchivedRecord
	err     error
}

func (f *fakeArchive) Write(_ context.Context, _ string, _ *entity.Record) error { return nil }

func (f *fakeArchive) FindByURL(_ context.Context, url string) (*repository.ArchivedRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.records[url]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return rec, nil
}

type fakeEvicter struct{ evicted []string }

func (f *fakeEvicter) Evict(_ context.Context, url string) error {
	f.evicted = append(f.evicted, url)
	return nil
}

func output() *entity.Record {
	rec := entity.NewRecord()
	rec.Set(entity.KeyFullName, "Archibald Mathies")
	rec.Set("birth_year", int64(1890))
	return rec
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestHandleExtract_Success(t *testing.T) {
	ex := &fakeExtractor{report: &usecase.Report{URL: memorialURL, Source: "http", Output: output()}}
	h := NewHandler(ex, nil)

	rec := post(h.HandleExtract, fmt.Sprintf(`{"url": %q}`, memorialURL))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"record":{"full_name":"Archibald Mathies","birth_year":1890}`)

	got := decode(t, rec)
	assert.Equal(t, "http", got["source"])
	assert.Equal(t, []any{}, got["issues"])
	assert.Equal(t, []string{memorialURL}, ex.urls)
}

func TestHandleExtract_RejectsBadInput(t *testing.T) {
	h := NewHandler(&fakeExtractor{}, nil)

	assert.Equal(t, http.StatusBadRequest, post(h.HandleExtract, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.HandleExtract, `{"url": "memorial/1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.HandleExtract, `{"url": "ftp://example.test/x"}`).Code)
}

func TestHandleExtract_FailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fetch", &usecase.RunError{Tag: entity.TagCritical, Step: usecase.StepFetch, Err: repository.ErrFetchFailed}, http.StatusBadGateway},
		{"missing payload", &usecase.RunError{Tag: entity.TagCritical, Step: usecase.StepParse, Err: extractor.ErrStructuredDataMissing}, http.StatusUnprocessableEntity},
		{"malformed payload", &usecase.RunError{Tag: entity.TagCritical, Step: usecase.StepParse, Err: extractor.ErrStructuredDataMalformed}, http.StatusUnprocessableEntity},
		{"sink", &usecase.RunError{Tag: entity.TagSave, Step: usecase.StepSave, Err: repository.ErrSinkWriteFailed}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &usecase.Report{URL: memorialURL}
			var runErr *usecase.RunError
			if errors.As(tt.err, &runErr) {
				report.Issues = []entity.Issue{runErr.Issue()}
			}
			h := NewHandler(&fakeExtractor{report: report, err: tt.err}, nil)

			rec := post(h.HandleExtract, fmt.Sprintf(`{"url": %q}`, memorialURL))
			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), `"record"`)
		})
	}
}

func TestHandleExtract_RefreshEvictsCache(t *testing.T) {
	ev := &fakeEvicter{}
	ex := &fakeExtractor{report: &usecase.Report{Output: output()}}
	h := NewHandler(ex, nil, WithCache(ev))

	post(h.HandleExtract, fmt.Sprintf(`{"url": %q, "refresh": true}`, memorialURL))
	post(h.HandleExtract, fmt.Sprintf(`{"url": %q}`, memorialURL))
	assert.Equal(t, []string{memorialURL}, ev.evicted)
}

func TestHandleColumns(t *testing.T) {
	h := NewHandler(&fakeExtractor{}, nil)
	rec := httptest.NewRecorder()
	h.HandleColumns(rec, httptest.NewRequest(http.MethodGet, "/api/columns", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cols []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cols))
	require.Len(t, cols, len(entity.OutputSchema.Columns))
	assert.Equal(t, entity.KeyFullName, cols[0]["key"])
	assert.Equal(t, true, cols[0]["exported"])
}

func TestHandleGetRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	archive := &fakeArchive{records: map[string]*repository.ArchivedRecord{
		memorialURL: {URL: memorialURL, ExtractedAt: at, Record: output()},
	}}
	h := NewHandler(&fakeExtractor{}, nil, WithArchive(archive))

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleGetRecord(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	ok := get("/api/records?url=" + memorialURL)
	require.Equal(t, http.StatusOK, ok.Code)
	got := decode(t, ok)
	record := got["record"].(map[string]any)
	assert.Equal(t, "Archibald Mathies", record[entity.KeyFullName])
	assert.Equal(t, "", record[entity.KeyBiography])
	assert.Len(t, record, len(entity.OutputSchema.Exported()))

	assert.Equal(t, http.StatusBadRequest, get("/api/records").Code)
	assert.Equal(t, http.StatusNotFound, get("/api/records?url=https://example.test/memorial/2").Code)

	archive.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, get("/api/records?url="+memorialURL).Code)
}

func TestHandleGetRecord_WithoutArchive(t *testing.T) {
	h := NewHandler(&fakeExtractor{}, nil)
	rec := httptest.NewRecorder()
	h.HandleGetRecord(rec, httptest.NewRequest(http.MethodGet, "/api/records?url="+memorialURL, nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandleHealthCheck(t *testing.T) {
	h := NewHandler(&fakeExtractor{}, nil,
		WithHealthCheck("redis", func(context.Context) error { return nil }),
		WithHealthCheck("postgres", func(context.Context) error { return errors.New("down") }),
	)
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "degraded", got["status"])
	assert.Equal(t, "ok", got["redis"])
	assert.Equal(t, "unavailable", got["postgres"])
}
