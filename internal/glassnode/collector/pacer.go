package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pacer throttles sequential API requests. Wait is called before every
// request except the first; sent is the number of requests already issued.
type Pacer interface {
	Wait(ctx context.Context, sent int) error
}

// DefaultBatchPause is how long BatchPacer waits after each full batch.
const DefaultBatchPause = 60 * time.Second

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BatchPacer pauses for a fixed duration each time a full batch of Size
// requests has been sent and more are about to follow. It never looks at
// responses.
type BatchPacer struct {
	Size   int
	Pause  time.Duration
	Sleep  SleepFunc
	Logger *zap.Logger
}

// NewBatchPacer pauses after every size requests; a non-positive size means
// DefaultBatchSize.
func NewBatchPacer(size int, pause time.Duration, logger *zap.Logger) *BatchPacer {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchPacer{
		Size:   size,
		Pause:  pause,
		Sleep:  sleepContext,
		Logger: logger,
	}
}

func (p *BatchPacer) Wait(ctx context.Context, sent int) error {
	if p.Size <= 0 || sent == 0 || sent%p.Size != 0 {
		return nil
	}

	if p.Logger != nil {
		p.Logger.Info("batch complete, pausing",
			zap.Int("sent", sent), zap.Duration("pause", p.Pause))
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, p.Pause)
}

// TokenBucketPacer allows bursts of up to maxTokens requests and refills one
// token every refillInterval.
type TokenBucketPacer struct {
	mu             sync.Mutex
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
}

func NewTokenBucketPacer(maxTokens int, refillInterval time.Duration) *TokenBucketPacer {
	return &TokenBucketPacer{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (p *TokenBucketPacer) Wait(ctx context.Context, _ int) error {
	for {
		p.mu.Lock()
		p.refill()
		if p.tokens > 0 {
			p.tokens--
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()

		if err := sleepContext(ctx, p.refillInterval); err != nil {
			return err
		}
	}
}

func (p *TokenBucketPacer) refill() {
	elapsed := time.Since(p.lastRefill)
	newTokens := int(elapsed / p.refillInterval)
	if newTokens > 0 {
		p.tokens += newTokens
		if p.tokens > p.maxTokens {
			p.tokens = p.maxTokens
		}
		p.lastRefill = p.lastRefill.Add(time.Duration(newTokens) * p.refillInterval)
	}
}

// Batches splits urls into consecutive slices of at most size elements.
func Batches(urls []string, size int) [][]string {
	if size <= 0 {
		size = len(urls)
	}
	var out [][]string
	for i := 0; i < len(urls); i += size {
		end := i + size
		if end > len(urls) {
			end = len(urls)
		}
		out = append(out, urls[i:end])
	}
	return out
}
