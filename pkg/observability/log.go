package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/mln/pkg/domain"
)

// LogHooks returns lifecycle hooks that write every event to logger.
// Successful events are logged at debug level, failures as warnings.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompile: func(ctx context.Context, e *domain.CompileEvent) {
			level := slog.LevelDebug
			attrs := []any{"session_id", e.SessionID, "artifact", e.Artifact, "duration", e.Duration}
			if e.Err != nil {
				level = slog.LevelWarn
				attrs = append(attrs, "err", e.Err)
			}
			logger.Log(ctx, level, "compile", attrs...)
		},
		OnInfer: func(ctx context.Context, e *domain.InferEvent) {
			level := slog.LevelDebug
			attrs := []any{"session_id", e.SessionID, "method", e.Method, "atoms", e.Atoms, "duration", e.Duration}
			if e.Err != nil {
				level = slog.LevelWarn
				attrs = append(attrs, "err", e.Err)
			}
			logger.Log(ctx, level, "infer", attrs...)
		},
		OnMethodChange: func(ctx context.Context, e *domain.MethodEvent) {
			logger.DebugContext(ctx, "method_change", "session_id", e.SessionID, "from", e.From, "to", e.To)
		},
	}
}
