package audiocore

import (
	"log/slog"

	"github.com/fenwick-audio/adrian/internal/logging"
)

// loggerFor returns a component-scoped logger, falling back to slog's
// default if the global logging package has not been initialized yet -
// useful in unit tests that construct an Allocator/Service without calling
// logging.Init first.
func loggerFor(component string) *slog.Logger {
	l := logging.ForService("audiocore")
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}
