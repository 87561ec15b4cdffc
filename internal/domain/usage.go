package domain

import (
	"context"
	"sync"
)

type providerUsageKey struct{}

// ProviderUsage collects provider token usage for a single API request.
// Categories of one request are sourced concurrently, so writes are locked.
type ProviderUsage struct {
	mu          sync.Mutex
	totalTokens int
	used        bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *ProviderUsage) {
	u := &ProviderUsage{}
	return context.WithValue(ctx, providerUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *ProviderUsage {
	u, _ := ctx.Value(providerUsageKey{}).(*ProviderUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *ProviderUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.used = true
	u.mu.Unlock()
}

// Snapshot returns the tokens recorded so far and whether the provider was called at all.
func (u *ProviderUsage) Snapshot() (tokens int, used bool) {
	if u == nil {
		return 0, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens, u.used
}
