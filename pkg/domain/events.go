package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCompile      EventType = "compile"
	EventInfer        EventType = "infer"
	EventMethodChange EventType = "method_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// CompileEvent is emitted after an artifact rebuild was attempted.
type CompileEvent struct {
	EventBase
	Artifact ArtifactKind  `json:"artifact"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// InferEvent is emitted after an inference call returned, successfully or not.
type InferEvent struct {
	EventBase
	Method   string        `json:"method"`
	Atoms    int           `json:"atoms"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// MethodEvent is emitted when a new engine-side method object was instantiated.
type MethodEvent struct {
	EventBase
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

// LifecycleHooks defines callbacks for controller observability.
// Every field is optional.
type LifecycleHooks struct {
	OnCompile      func(context.Context, *CompileEvent)
	OnInfer        func(context.Context, *InferEvent)
	OnMethodChange func(context.Context, *MethodEvent)
}

// Merge combines several hook sets into one that fans out to all of them.
func Merge(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCompile: func(ctx context.Context, e *CompileEvent) {
			for _, h := range hooks {
				if h.OnCompile != nil {
					h.OnCompile(ctx, e)
				}
			}
		},
		OnInfer: func(ctx context.Context, e *InferEvent) {
			for _, h := range hooks {
				if h.OnInfer != nil {
					h.OnInfer(ctx, e)
				}
			}
		},
		OnMethodChange: func(ctx context.Context, e *MethodEvent) {
			for _, h := range hooks {
				if h.OnMethodChange != nil {
					h.OnMethodChange(ctx, e)
				}
			}
		},
	}
}
