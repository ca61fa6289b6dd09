package support

import (
	"context"

	"staybook/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit of work from ctx or opens a read-only one.
// cleanup is nil when the unit came from ctx.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := injectUnit(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// WriteUnit is a unit of work either borrowed from ctx or owned by the caller.
type WriteUnit struct {
	uow.UnitOfWork
	Ctx       context.Context
	managed   bool
	committed bool
}

// BeginWriteUnit reuses the unit of work from ctx (the transaction middleware
// owns commit) or starts one the caller must Commit and Close.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (*WriteUnit, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{UnitOfWork: unit, Ctx: ctx}, nil
	}
	if factory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &WriteUnit{UnitOfWork: unit, Ctx: injectUnit(ctx, unit), managed: true}, nil
}

// Commit commits only a unit this WriteUnit started.
func (w *WriteUnit) Commit() error {
	if !w.managed || w.committed {
		return nil
	}
	if err := w.UnitOfWork.Commit(w.Ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// Close rolls back an owned unit that was never committed.
func (w *WriteUnit) Close() {
	if w.managed && !w.committed {
		_ = w.UnitOfWork.Rollback(w.Ctx)
	}
}

func injectUnit(ctx context.Context, unit uow.UnitOfWork) context.Context {
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	return uow.ContextWithUnitOfWork(execCtx, unit)
}
