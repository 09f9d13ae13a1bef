package httploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/proxy"
	"github.com/user/memorial-extractor/internal/repository"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 16 << 20

// HTTPLoader fetches memorial pages with a single plain GET.
type HTTPLoader struct {
	client  *http.Client
	proxies *proxy.Manager
	logger  *zap.Logger
}

// NewHTTPLoader creates a loader whose requests time out after timeout and
// go through the manager's proxies and user agents.
func NewHTTPLoader(timeout time.Duration, pm *proxy.Manager, logger *zap.Logger) *HTTPLoader {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = pm.ProxyFunc
	return &HTTPLoader{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		proxies: pm,
		logger:  logger,
	}
}

var _ repository.DocumentLoader = (*HTTPLoader)(nil)

// Load issues one GET. Transport errors and non-2xx responses are returned
// wrapped in repository.ErrFetchFailed; nothing is retried.
func (l *HTTPLoader) Load(ctx context.Context, url string) (*entity.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", repository.ErrFetchFailed, err)
	}
	if ua := l.proxies.GetUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %v", repository.ErrFetchFailed, repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", repository.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", repository.ErrFetchFailed, err)
	}

	l.logger.Debug("fetched page", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))

	return &entity.RawDocument{
		URL:        url,
		Body:       string(body),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
		Source:     "http",
	}, nil
}
