package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
)

// Handle reports an error that cannot be propagated further, such as a
// failure inside a fire-and-forget notification dispatch
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	ctxlog.From(ctx).Error("application error", "error", err)
}
