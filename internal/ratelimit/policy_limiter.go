package ratelimit

import (
	"context"
	"strconv"
	"strings"
)

// LimitExceeded describes the limit a rejected request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter counts requests per client against the limits of a Policy.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a limiter recording counts in store.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request under every limit of every scope and reports the
// first one exceeded. Scopes without limits in the policy are ignored, and a
// scope listed twice is only counted once.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	seen := make(map[Scope]struct{}, len(scopes))

	for _, scope := range scopes {
		if _, dup := seen[scope]; dup {
			continue
		}

		seen[scope] = struct{}{}

		exceeded, err := l.check(ctx, clientKey, scope, string(scope), l.policy.Limits[scope])
		if err != nil || exceeded != nil {
			return false, exceeded, err
		}
	}

	return true, nil, nil
}

// AllowLimits applies limits that are not part of the policy, such as the
// custom limits of a single route. name keeps their counters apart from the
// policy scopes.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context,
	clientKey, name string,
	limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	exceeded, err := l.check(ctx, clientKey, ScopeCustom, "custom:"+name, limits)
	if err != nil || exceeded != nil {
		return false, exceeded, err
	}

	return true, nil, nil
}

func (l *PolicyLimiter) check(
	ctx context.Context,
	clientKey string,
	scope Scope,
	name string,
	limits []LimitConfig,
) (*LimitExceeded, error) {
	for _, limit := range limits {
		count, err := l.store.Record(ctx, buildKey(clientKey, name, limit), limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return nil, nil
}

// buildKey is client:name:window_ms so each limit keeps its own counter.
func buildKey(clientKey, name string, limit LimitConfig) string {
	var b strings.Builder

	b.Grow(len(clientKey) + len(name) + 24)
	b.WriteString(clientKey)
	b.WriteByte(':')
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(limit.Window.Milliseconds(), 10))

	return b.String()
}
