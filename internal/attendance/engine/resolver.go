package engine

import (
	"context"
	"time"
)

// DefaultScheduleCacheTTL bounds how long a resolved working day is served
// from cache before the organization's configuration is re-read.
const DefaultScheduleCacheTTL = 30 * time.Minute

// ScheduleSource is the narrow read accessor the resolver consumes. It is
// owned by the persistence layer; a missing organization surfaces as that
// layer's "not found" error.
type ScheduleSource interface {
	OrganizationSchedule(ctx context.Context, organizationID string) (*OrganizationSchedule, error)
}

// Resolver resolves working days for organizations, caching results per
// (organization, date). Callers get identical answers with or without a
// cache hit; the cache only saves the configuration read.
type Resolver struct {
	source   ScheduleSource
	cache    *scheduleCache
	fallback *OrganizationSchedule
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	ttl      time.Duration
	now      func() time.Time
	fallback *OrganizationSchedule
}

// WithCacheTTL overrides the schedule cache TTL.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(cfg *resolverConfig) { cfg.ttl = ttl }
}

// WithClock injects the clock used for cache expiry. Tests use this to
// advance time deterministically.
func WithClock(now func() time.Time) ResolverOption {
	return func(cfg *resolverConfig) { cfg.now = now }
}

// WithFallbackSchedule replaces the built-in default schedule used for
// shifts that carry no organization. Deployments tune it through the
// engine config section.
func WithFallbackSchedule(s *OrganizationSchedule) ResolverOption {
	return func(cfg *resolverConfig) { cfg.fallback = s }
}

// NewResolver builds a Resolver over the given schedule source.
func NewResolver(source ScheduleSource, opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{ttl: DefaultScheduleCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver{
		source:   source,
		cache:    newScheduleCache(cfg.ttl, cfg.now),
		fallback: cfg.fallback,
	}
}

// WorkingDay resolves the working day for an organization and date. An
// empty organization ID short-circuits to the fallback schedule.
func (r *Resolver) WorkingDay(ctx context.Context, organizationID string, date time.Time) (ResolvedWorkingDay, error) {
	if organizationID == "" {
		return ResolveWorkingDay(r.fallback, date), nil
	}

	key := cacheKey(organizationID, date)
	if day, ok := r.cache.get(key); ok {
		return day, nil
	}

	schedule, err := r.source.OrganizationSchedule(ctx, organizationID)
	if err != nil {
		return ResolvedWorkingDay{}, err
	}
	if schedule == nil {
		schedule = r.fallback
	}

	day := ResolveWorkingDay(schedule, date)
	r.cache.set(key, day)
	return day, nil
}

// Invalidate drops all cached days for an organization. Called when its
// schedule configuration changes.
func (r *Resolver) Invalidate(organizationID string) {
	r.cache.invalidateOrganization(organizationID)
}
