package httploader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/proxy"
	"github.com/user/memorial-extractor/internal/repository"
)

func TestHTTPLoader_Load(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>memorial</body></html>"))
	}))
	defer srv.Close()

	l := NewHTTPLoader(5*time.Second, proxy.NewManager(nil, "test-agent/1.0"), zap.NewNop())
	doc, err := l.Load(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Equal(t, "<html><body>memorial</body></html>", doc.Body)
	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Equal(t, "http", doc.Source)
	assert.Equal(t, srv.URL, doc.URL)
}

func TestHTTPLoader_NonSuccessStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewHTTPLoader(5*time.Second, proxy.NewManager(nil), zap.NewNop())
	_, err := l.Load(context.Background(), srv.URL)

	require.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, 1, calls, "fetch must not be retried")
}

func TestHTTPLoader_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l := NewHTTPLoader(time.Second, proxy.NewManager(nil), zap.NewNop())
	_, err := l.Load(context.Background(), url)
	require.ErrorIs(t, err, repository.ErrFetchFailed)
}

func TestHTTPLoader_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	l := NewHTTPLoader(5*time.Second, proxy.NewManager(nil), zap.NewNop())
	_, err := l.Load(ctx, srv.URL)
	require.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.ErrorIs(t, err, repository.ErrFetchTimeout)
}
