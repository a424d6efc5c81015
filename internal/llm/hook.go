package llm

import "context"

// PromptHook observes each request. Before sees the exact prompt sent;
// After sees the raw reply or the error.
type PromptHook interface {
	Before(ctx context.Context, worker, prompt string)
	After(ctx context.Context, worker, raw string, err error)
}

type ctxKeyHook struct{}
type ctxKeyWorker struct{}

// WithPromptHook attaches hook to ctx for the WithHooks middleware.
func WithPromptHook(ctx context.Context, hook PromptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// WithWorker names the unit of work a request belongs to.
func WithWorker(ctx context.Context, worker string) context.Context {
	return context.WithValue(ctx, ctxKeyWorker{}, worker)
}

// HookFrom returns the hook stored in the context.
func HookFrom(ctx context.Context) PromptHook {
	if h, ok := ctx.Value(ctxKeyHook{}).(PromptHook); ok {
		return h
	}
	return nil
}

// WorkerFrom returns the worker name stored in the context.
func WorkerFrom(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyWorker{}).(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// WithHooks calls HookFrom(ctx).Before/After around GenerateText.
// If no hook is present in the context, it is a no-op.
func WithHooks() Middleware {
	return func(next Client) Client {
		return &hooked{next: next}
	}
}

type hooked struct{ next Client }

func (h *hooked) Name() string { return h.next.Name() }
func (h *hooked) Close() error { return h.next.Close() }
func (h *hooked) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	hook := HookFrom(ctx)
	if hook != nil {
		hook.Before(ctx, WorkerFrom(ctx), prompt)
	}
	out, err := h.next.GenerateText(ctx, prompt, opts)
	if hook != nil {
		hook.After(ctx, WorkerFrom(ctx), out, err)
	}
	return out, err
}
