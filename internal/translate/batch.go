package translate

import (
	"context"
	"fmt"
	"sync"

	"github.com/mgpai22/wordcue/internal/logging"
)

// BatchTranslator splits items into batches of Options.BatchSize, sends
// each batch as one prompt, and runs up to Options.Concurrency batches at
// once. The first failed batch cancels the rest.
type BatchTranslator struct {
	backend completer
	options Options
	logger  *logging.Logger
}

func newBatchTranslator(backend completer, opts Options, logger *logging.Logger) *BatchTranslator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &BatchTranslator{backend: backend, options: opts, logger: logger}
}

// Translate returns one result per item, in item order.
func (t *BatchTranslator) Translate(ctx context.Context, items []Item) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	batches := splitBatches(items, t.options.BatchSize)
	if len(batches) == 1 {
		return t.translateBatch(ctx, 0, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, t.options.Concurrency)
	translated := make([][]Result, len(batches))

	for i, batch := range batches {
		wg.Go(func() {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			results, err := t.translateBatch(ctx, i, batch)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("batch %d failed: %w", i, err)
				}
				mu.Unlock()
				cancel()
				return
			}
			translated[i] = results
		})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]Result, 0, len(items))
	for _, results := range translated {
		all = append(all, results...)
	}
	return all, nil
}

func (t *BatchTranslator) translateBatch(ctx context.Context, n int, items []Item) ([]Result, error) {
	t.logger.Debugw("Translating batch",
		"batch", n,
		"items", len(items),
		"target", t.options.TargetLanguage,
	)

	reply, err := t.backend.complete(ctx, BuildPrompt(t.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	return matchResults(items, reply)
}

// matchResults parses reply and orders it by the input items. Every item
// index must come back exactly once.
func matchResults(items []Item, reply string) ([]Result, error) {
	cleaned := cleanJSONResponse(reply)
	results, err := extractResults(cleaned)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(cleaned, 200),
		)
	}

	if len(results) != len(items) {
		return nil, fmt.Errorf("expected %d results, got %d", len(items), len(results))
	}

	byIndex := make(map[int]string, len(results))
	for _, r := range results {
		byIndex[r.Index] = r.Text
	}

	ordered := make([]Result, len(items))
	for i, item := range items {
		text, ok := byIndex[item.Index]
		if !ok {
			return nil, fmt.Errorf("missing translation for index %d", item.Index)
		}
		ordered[i] = Result{Index: item.Index, Text: text}
	}
	return ordered, nil
}

func splitBatches(items []Item, size int) [][]Item {
	var batches [][]Item
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
