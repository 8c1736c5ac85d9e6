// Package pdf renders application summaries for the staff export
// endpoint.
package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateApplicationSummary(ctx context.Context, data ApplicationSummaryData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateApplicationSummary(ctx context.Context, data ApplicationSummaryData) (io.Reader, error) {
	return nil, nil
}
