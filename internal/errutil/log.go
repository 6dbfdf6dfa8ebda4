// Package errutil logs errors with the structured context attached by oops.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. oops errors contribute their code and
// context as attributes; other errors are logged as a plain string.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, append(attrs, "error", err)...)
}
