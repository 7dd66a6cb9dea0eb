package tenant

import (
	"context"

	"github.com/yanizio/brochure/internal/site"
)

type ctxKey struct{}

// WithSite binds s to ctx.  A nil s is stored as-is so downstream scoped
// queries see "no site" rather than falling back to ambient state.
func WithSite(ctx context.Context, s *site.Site) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the bound Site or nil.
func FromContext(ctx context.Context) *site.Site {
	s, _ := ctx.Value(ctxKey{}).(*site.Site)
	return s
}
