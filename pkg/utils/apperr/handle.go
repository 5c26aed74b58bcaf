package apperr

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
)

// Handle logs an error that ends its journey here, e.g. in a response writer or a background job.
// Cancellation by the caller is not treated as a failure.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Warn("operation canceled", "error", err)
		return
	}
	logger.Error("application error", "error", err)
}
