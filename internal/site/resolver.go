package site

import (
	"context"

	"formgate/internal/logger"
	pkgerrors "formgate/pkg/errors"
)

// Resolver looks up the tenant for an incoming submission. Lookup failures
// are treated the same as an unknown site so a registry outage never lets
// unverified traffic through.
type Resolver struct {
	repo   Repository
	logger logger.Logger
}

func NewResolver(repo Repository, log logger.Logger) *Resolver {
	return &Resolver{repo: repo, logger: log}
}

func (r *Resolver) Resolve(ctx context.Context, id string) (*Site, error) {
	if id == "" {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "missing site id")
	}

	s, err := r.repo.Get(ctx, id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			r.logger.ErrorwCtx(ctx, "Site lookup failed",
				"error", err,
				"site_id", id,
			)
		}
		return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("message", "unknown site")
	}

	if !s.Enabled {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "site disabled")
	}

	return s, nil
}
