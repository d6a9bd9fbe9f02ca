// Package gating enforces plan-based feature availability and usage limits
// before an organization can create automations.
package gating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emeraldhq/pulse/pkg/models"
	"github.com/emeraldhq/pulse/pkg/persistence"
)

// ErrFeatureNotAvailable indicates the organization's plan does not include
// automations at all.
var ErrFeatureNotAvailable = errors.New("automations are not available on this plan")

// LimitError indicates the organization reached its plan's automation cap.
type LimitError struct {
	Plan    models.SubscriptionPlan
	Limit   int
	Current int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("automation limit reached: plan %s allows %d, organization has %d", e.Plan, e.Limit, e.Current)
}

// IsLimitError reports whether err is a plan limit violation.
func IsLimitError(err error) bool {
	var limitErr *LimitError

	return errors.As(err, &limitErr)
}

const (
	countKeyPrefix  = "pulse:gating:automations:"
	defaultCacheTTL = 5 * time.Minute
)

// Gate answers whether an organization may create another automation. Counts
// are cached in Redis when a client is configured so the hot path avoids a
// database round trip.
type Gate struct {
	logger      *slog.Logger
	automations persistence.AutomationRepository
	cache       *redis.Client
	cacheTTL    time.Duration
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithCache enables Redis-backed count caching.
func WithCache(client *redis.Client) GateOption {
	return func(g *Gate) {
		g.cache = client
	}
}

// WithCacheTTL sets how long cached counts stay fresh.
func WithCacheTTL(ttl time.Duration) GateOption {
	return func(g *Gate) {
		g.cacheTTL = ttl
	}
}

func NewGate(logger *slog.Logger, automations persistence.AutomationRepository, opts ...GateOption) *Gate {
	gate := &Gate{
		logger:      logger.With("module", "gating"),
		automations: automations,
		cacheTTL:    defaultCacheTTL,
	}

	for _, opt := range opts {
		opt(gate)
	}

	return gate
}

// CanCreateAutomation returns nil when the plan allows one more automation,
// ErrFeatureNotAvailable when the plan has no automations, and a *LimitError
// when the cap is reached.
func (g *Gate) CanCreateAutomation(ctx context.Context, organizationID string, plan models.SubscriptionPlan) error {
	features := plan.Features()

	if !features.Automations {
		return fmt.Errorf("%w: plan %s", ErrFeatureNotAvailable, plan)
	}

	if features.MaxAutomations == models.Unlimited {
		return nil
	}

	count, err := g.automationCount(ctx, organizationID)
	if err != nil {
		return fmt.Errorf("failed to count automations for %s: %w", organizationID, err)
	}

	if count >= int64(features.MaxAutomations) {
		return &LimitError{Plan: plan, Limit: features.MaxAutomations, Current: count}
	}

	return nil
}

// InvalidateCount drops the cached count after a create or delete so the next
// check reflects current usage.
func (g *Gate) InvalidateCount(ctx context.Context, organizationID string) {
	if g.cache == nil {
		return
	}

	if err := g.cache.Del(ctx, countKeyPrefix+organizationID).Err(); err != nil {
		g.logger.Warn("Failed to invalidate cached automation count",
			"organization_id", organizationID,
			"error", err)
	}
}

// automationCount reads the cached count, falling back to the repository on a
// miss or a cache error. Cache failures degrade to the repository silently.
func (g *Gate) automationCount(ctx context.Context, organizationID string) (int64, error) {
	if g.cache != nil {
		cached, err := g.cache.Get(ctx, countKeyPrefix+organizationID).Result()
		if err == nil {
			count, parseErr := strconv.ParseInt(cached, 10, 64)
			if parseErr == nil {
				return count, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			g.logger.Warn("Automation count cache read failed",
				"organization_id", organizationID,
				"error", err)
		}
	}

	count, err := g.automations.Count(ctx, organizationID)
	if err != nil {
		return 0, err
	}

	if g.cache != nil {
		setErr := g.cache.Set(ctx, countKeyPrefix+organizationID, strconv.FormatInt(count, 10), g.cacheTTL).Err()
		if setErr != nil {
			g.logger.Warn("Automation count cache write failed",
				"organization_id", organizationID,
				"error", setErr)
		}
	}

	return count, nil
}
