package http

import (
	"context"

	"library-rental-backend/internal/domain"
)

type requesterKey struct{}

// WithRequester stores the authenticated identity on ctx.
func WithRequester(ctx context.Context, r domain.Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFromContext returns the identity set by the auth middleware.
func RequesterFromContext(ctx context.Context) (domain.Requester, bool) {
	r, ok := ctx.Value(requesterKey{}).(domain.Requester)
	return r, ok
}
