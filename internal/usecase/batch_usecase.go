package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// RunFactory builds the extractor for one URL, typically with a sink
// writing that URL's own workbook.
type RunFactory func(url string) MemorialExtractor

// BatchResult is the outcome for one URL of a batch.
type BatchResult struct {
	URL    string
	Report *Report
	Err    error
}

type batchTask struct {
	index int
	url   string
}

// BatchRunner extracts many memorials with a fixed pool of workers.
type BatchRunner struct {
	workers int
	newRun  RunFactory
	logger  *zap.Logger

	taskQueue chan batchTask
	wg        sync.WaitGroup
}

// NewBatchRunner creates a runner with workers goroutines (at least one).
func NewBatchRunner(workers int, newRun RunFactory, logger *zap.Logger) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{workers: workers, newRun: newRun, logger: logger}
}

// Run processes urls and returns one result per URL, in input order.
// URLs not started before ctx is cancelled report ctx.Err().
func (b *BatchRunner) Run(ctx context.Context, urls []string) []BatchResult {
	results := make([]BatchResult, len(urls))
	for i, u := range urls {
		results[i] = BatchResult{URL: u, Err: context.Canceled}
	}

	b.taskQueue = make(chan batchTask, b.workers*2)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(ctx, results)
	}

submit:
	for i, u := range urls {
		select {
		case b.taskQueue <- batchTask{index: i, url: u}:
		case <-ctx.Done():
			b.logger.Warn("Batch cancelled", zap.Int("submitted", i), zap.Int("total", len(urls)))
			for j := i; j < len(urls); j++ {
				results[j].Err = ctx.Err()
			}
			break submit
		}
	}
	close(b.taskQueue)
	b.wg.Wait()
	return results
}

func (b *BatchRunner) worker(ctx context.Context, results []BatchResult) {
	defer b.wg.Done()
	for task := range b.taskQueue {
		if err := ctx.Err(); err != nil {
			results[task.index].Err = err
			continue
		}
		report, err := b.newRun(task.url).Run(ctx, task.url)
		results[task.index] = BatchResult{URL: task.url, Report: report, Err: err}
	}
}
