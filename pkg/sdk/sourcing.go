package vendorscout

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

// Source ranks the vendors of one category against the brief. A brief that no vendor
// satisfies returns a Result with StatusNoMatch and a nil error.
func (c *Client) Source(ctx context.Context, b Brief, category string, topK int) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("source", start, err) }()

	bf, err := toBrief(b)
	if err != nil {
		return Result{}, err
	}

	ctx, u := domain.NewContextWithUsage(c.withLogger(ctx))
	r, err := c.sourcing.Source(ctx, &bf, category, topK)
	if err != nil {
		return Result{}, fmt.Errorf("source %s: %w", category, err)
	}
	tokens, _ := u.Snapshot()
	return fromResult(&r, tokens), nil
}

// SourceAll sources several categories concurrently. A failing category is reported in
// its Outcome; the error is non-nil only for an invalid brief, an empty category list or
// a cancelled context. ProviderTokens of each result is the total of the whole call.
func (c *Client) SourceAll(
	ctx context.Context, b Brief, categories []string, topK int,
) (out map[string]Outcome, err error) {
	start := time.Now()
	defer func() { c.obs.observe("source_all", start, err) }()

	bf, err := toBrief(b)
	if err != nil {
		return nil, err
	}

	ctx, u := domain.NewContextWithUsage(c.withLogger(ctx))
	outcomes, err := c.sourcing.SourceAll(ctx, &bf, categories, topK)
	if err != nil {
		return nil, fmt.Errorf("source all: %w", err)
	}
	tokens, _ := u.Snapshot()

	out = make(map[string]Outcome, len(outcomes))
	for category, o := range outcomes {
		if o.Err != nil {
			out[category] = Outcome{Err: o.Err}
			continue
		}
		out[category] = Outcome{Result: fromResult(&o.Result, tokens)}
	}
	return out, nil
}
