package ratelimit

import (
	"context"
	"time"

	"formgate/internal/constants"
	"formgate/internal/logger"
	"formgate/pkg/metrics"
)

// Limiter caps each (site, client IP) pair at one accepted submission per
// UTC minute. The bucket key encodes the minute, so an atomic insert-if-absent
// is the whole check: first insert wins, duplicates in the same minute lose.
// No counters, no read-then-write race.
type Limiter struct {
	repo      Repository
	logger    logger.Logger
	bucketTTL time.Duration
	now       func() time.Time
}

func NewLimiter(repo Repository, log logger.Logger, bucketTTLSeconds int) *Limiter {
	return &Limiter{
		repo:      repo,
		logger:    log,
		bucketTTL: time.Duration(bucketTTLSeconds) * time.Second,
		now:       time.Now,
	}
}

// TryAcquire reports whether this request claims the current minute bucket.
// A Redis failure allows the request through; availability of the contact
// channel wins over strict enforcement.
func (l *Limiter) TryAcquire(ctx context.Context, siteID, clientIP string) bool {
	key := l.bucketKey(siteID, clientIP)

	acquired, err := l.repo.SetNX(ctx, key, 1, l.bucketTTL)
	if err != nil {
		l.logger.WarnwCtx(ctx, "Rate limit check failed, allowing request",
			"error", err,
			"site_id", siteID,
		)
		metrics.RateLimitDecisionsTotal.WithLabelValues("error").Inc()
		return true
	}

	if !acquired {
		metrics.RateLimitDecisionsTotal.WithLabelValues("limited").Inc()
		return false
	}

	metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
	return true
}

func (l *Limiter) bucketKey(siteID, clientIP string) string {
	minute := l.now().UTC().Format("200601021504")
	return constants.RateKeyPrefix + siteID + ":" + clientIP + ":" + minute
}
