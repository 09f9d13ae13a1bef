package chromedp_loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/repository"
)

// ChromedpLoader renders memorial pages in headless Chrome and returns the
// resulting document markup. It is used when the plain HTTP fetch is
// blocked or when the page builds its content with scripts.
type ChromedpLoader struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   *zap.Logger
}

// NewChromedpLoader creates a loader backed by one browser allocator.
// proxyServer may be empty.
func NewChromedpLoader(pageLoadTimeout time.Duration, userAgent, proxyServer string, logger *zap.Logger) *ChromedpLoader {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpLoader{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  pageLoadTimeout,
		logger:   logger,
	}
}

var _ repository.DocumentLoader = (*ChromedpLoader)(nil)

// Load navigates to url and returns the outer HTML of the rendered document.
func (c *ChromedpLoader) Load(ctx context.Context, url string) (*entity.RawDocument, error) {
	taskCtx, cancel := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	// Stop the browser work when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	tracker := &documentStatus{}
	chromedp.ListenTarget(taskCtx, tracker.observe)

	var markup string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %v", repository.ErrFetchFailed, repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w: %v", repository.ErrFetchFailed, repository.ErrNavigationFailed, err)
	}

	status := tracker.get()
	if err := checkStatus(status); err != nil {
		return nil, err
	}

	c.logger.Debug("rendered page", zap.String("url", url), zap.Int64("status", status), zap.Int("bytes", len(markup)))

	return &entity.RawDocument{
		URL:        url,
		Body:       markup,
		StatusCode: int(status),
		FetchedAt:  time.Now(),
		Source:     "chrome",
	}, nil
}

// Close shuts the browser allocator down.
func (c *ChromedpLoader) Close() {
	c.cancel()
}

// documentStatus records the HTTP status of the first document response.
type documentStatus struct {
	mu     sync.Mutex
	status int64
}

func (d *documentStatus) observe(ev interface{}) {
	e, ok := ev.(*network.EventResponseReceived)
	if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == 0 {
		d.status = e.Response.Status
	}
}

func (d *documentStatus) get() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// checkStatus rejects non-2xx documents. 0 means no response event was
// seen (e.g. served from the browser cache) and is accepted.
func checkStatus(status int64) error {
	if status == 0 || (status >= 200 && status <= 299) {
		return nil
	}
	return fmt.Errorf("%w: unexpected status code %d", repository.ErrFetchFailed, status)
}
