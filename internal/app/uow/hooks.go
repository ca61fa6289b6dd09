package uow

import (
	"context"
	"sync"
)

// Hooks is an embeddable after-commit hook list for UnitOfWork implementations.
type Hooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

func (h *Hooks) AfterCommit(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// RunHooks executes and clears registered hooks in registration order. The
// context handed to hooks carries no unit of work.
func (h *Hooks) RunHooks(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	hookCtx := DetachUnitOfWork(ctx)
	for _, fn := range fns {
		fn(hookCtx)
	}
}

// DiscardHooks drops registered hooks without running them.
func (h *Hooks) DiscardHooks() {
	h.mu.Lock()
	h.fns = nil
	h.mu.Unlock()
}
