package runtime

import (
	"context"
	"time"

	"github.com/aretw0/mln/pkg/domain"
)

func (s *Session) eventBase(t domain.EventType, now time.Time) domain.EventBase {
	return domain.EventBase{
		Timestamp: now,
		Type:      t,
		SessionID: s.id,
	}
}

func (s *Session) emitCompile(ctx context.Context, e *domain.CompileEvent) {
	if s.hooks.OnCompile != nil {
		s.hooks.OnCompile(ctx, e)
	}
}

func (s *Session) emitInfer(ctx context.Context, e *domain.InferEvent) {
	if s.hooks.OnInfer != nil {
		s.hooks.OnInfer(ctx, e)
	}
}

func (s *Session) emitMethodChange(ctx context.Context, e *domain.MethodEvent) {
	if s.hooks.OnMethodChange != nil {
		s.hooks.OnMethodChange(ctx, e)
	}
}
