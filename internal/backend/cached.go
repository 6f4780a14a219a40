package backend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"onboarding-chat/internal/common/cache"
	apperrors "onboarding-chat/internal/common/errors"
	"onboarding-chat/internal/common/logger"
	"onboarding-chat/internal/common/metrics"
)

// API is the set of backend calls the conversation needs.
type API interface {
	Onboarding(ctx context.Context) (*OnboardingOptions, error)
	Recommend(ctx context.Context, answers Answers) (*Recommendation, error)
	FAQs(ctx context.Context) ([]FAQ, error)
	AskFAQ(ctx context.Context, question string) (*FAQAnswer, error)
}

// CachedClient caches the two catalogue GETs per session. POSTs always go
// to the backend.
type CachedClient struct {
	next    API
	cache   cache.Cache
	ttl     time.Duration
	session string
	logger  logger.Logger
}

func NewCachedClient(next API, c cache.Cache, ttl time.Duration, sessionID string, log logger.Logger) *CachedClient {
	return &CachedClient{
		next:    next,
		cache:   c,
		ttl:     ttl,
		session: sessionID,
		logger: log.With(map[string]interface{}{
			"component": "backend-cache",
			"session":   sessionID,
		}),
	}
}

func (c *CachedClient) key(name string) string {
	return "onboarding-chat:" + c.session + ":" + name
}

func (c *CachedClient) Onboarding(ctx context.Context) (*OnboardingOptions, error) {
	var out OnboardingOptions
	if c.lookup(ctx, PathOnboarding, "onboarding", &out) {
		return &out, nil
	}
	fresh, err := c.next.Onboarding(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "onboarding", fresh)
	return fresh, nil
}

func (c *CachedClient) FAQs(ctx context.Context) ([]FAQ, error) {
	var out []FAQ
	if c.lookup(ctx, PathFAQ, "faqs", &out) {
		return out, nil
	}
	fresh, err := c.next.FAQs(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, "faqs", fresh)
	return fresh, nil
}

func (c *CachedClient) Recommend(ctx context.Context, answers Answers) (*Recommendation, error) {
	return c.next.Recommend(ctx, answers)
}

func (c *CachedClient) AskFAQ(ctx context.Context, question string) (*FAQAnswer, error) {
	return c.next.AskFAQ(ctx, question)
}

func (c *CachedClient) lookup(ctx context.Context, endpoint, name string, out interface{}) bool {
	raw, err := c.cache.Get(ctx, c.key(name))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("cache read failed", map[string]interface{}{
				"error": apperrors.NewCacheFailureError("get", err).Error(),
			})
		}
		metrics.CacheLookups.WithLabelValues(endpoint, metrics.CacheMiss).Inc()
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("cached value unreadable", map[string]interface{}{"key": c.key(name), "error": err.Error()})
		metrics.CacheLookups.WithLabelValues(endpoint, metrics.CacheMiss).Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues(endpoint, metrics.CacheHit).Inc()
	return true
}

func (c *CachedClient) store(ctx context.Context, name string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.key(name), raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{
			"error": apperrors.NewCacheFailureError("set", err).Error(),
		})
	}
}
