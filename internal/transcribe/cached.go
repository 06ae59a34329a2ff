package transcribe

import (
	"context"
	"encoding/json"

	"github.com/mgpai22/wordcue/internal/cache"
	"github.com/mgpai22/wordcue/internal/logging"
	"github.com/mgpai22/wordcue/internal/transcript"
)

// CachedTranscriber stores recognizer results in a cache.Store. Cache
// failures are logged and never fail the transcription.
type CachedTranscriber struct {
	next     Transcriber
	store    *cache.Store
	provider Provider
	opts     Options
	logger   *logging.Logger
}

// wraps next so results are read from and written to store
func WithCache(
	next Transcriber,
	store *cache.Store,
	provider Provider,
	opts Options,
	logger *logging.Logger,
) *CachedTranscriber {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(provider)
	}
	return &CachedTranscriber{
		next:     next,
		store:    store,
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

func (c *CachedTranscriber) Transcribe(ctx context.Context, audio string) (transcript.Transcript, error) {
	key := cache.KeyFor(string(c.provider), c.opts.Model, c.opts.Language, c.opts.Prompt, audio)

	payload, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warnw("Transcript cache lookup failed", "error", err)
	case ok:
		t, parseErr := transcript.Parse(payload)
		if parseErr == nil {
			c.logger.Debugw("Using cached transcript", "audio", audio, "sentences", len(t))
			return t, nil
		}
		c.logger.Warnw("Ignoring unreadable cache entry", "error", parseErr)
	}

	t, err := c.next.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(t)
	if err != nil {
		c.logger.Warnw("Failed to encode transcript for cache", "error", err)
		return t, nil
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		c.logger.Warnw("Failed to store transcript in cache", "error", err)
	}
	return t, nil
}
