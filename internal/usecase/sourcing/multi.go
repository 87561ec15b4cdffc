package sourcing

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
)

// Outcome is the result or error of one category in a multi-category request.
type Outcome struct {
	Result domsrc.Result
	Err    error
}

// SourceAll sources every category concurrently. Categories are independent: a failing
// category is reported in its Outcome and does not stop the others. The returned error is
// non-nil only for an empty category list or when ctx is cancelled.
func (s *Service) SourceAll(
	ctx context.Context, b *brief.Brief, categories []string, topK int,
) (map[string]Outcome, error) {
	names := dedupe(categories)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", domain.ErrInvalidBrief)
	}

	outcomes := make([]Outcome, len(names))
	var g errgroup.Group
	for i, category := range names {
		g.Go(func() error {
			res, err := s.Source(ctx, b, category, topK)
			outcomes[i] = Outcome{Result: res, Err: err}
			// Only cancellation of the whole request aborts it.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Outcome, len(names))
	for i, category := range names {
		out[category] = outcomes[i]
	}
	return out, nil
}

func dedupe(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
