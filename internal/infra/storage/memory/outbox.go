package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "staybook/internal/app/outbox"
)

// Outbox keeps events in memory; Flush moves them to the delivered list and logs them.
type Outbox struct {
	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	delivered []appoutbox.EventRecord
	logger    *slog.Logger
}

func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	flushed := o.pending
	o.pending = nil
	o.delivered = append(o.delivered, flushed...)
	o.mu.Unlock()
	if o.logger != nil {
		for _, rec := range flushed {
			o.logger.DebugContext(ctx, "event delivered", slog.String("event", rec.Name), slog.String("aggregate", rec.Aggregate))
		}
	}
	return nil
}

// Delivered returns a copy of every flushed record.
func (o *Outbox) Delivered() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.delivered...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
