package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"staybook/internal/app/commands"
)

// IdempotentCommand is a command carrying a client supplied Idempotency-Key.
// ResultPrototype returns a fresh pointer of the handler result type to decode a replay into.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// ScopedCommand limits replays to one caller. Commands issued on behalf of a
// user return that user's ID so equal keys from different users never collide.
type ScopedCommand interface {
	IdempotencyScope() string
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

type idempotency struct {
	store IdempotencyStore
	codec ResultCodec
	now   func() time.Time
}

// Idempotency replays the stored result of a previously successful command with the same key.
// Failed executions are not recorded so the client may retry them.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	m := idempotency{store: store, codec: codec, now: time.Now}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := replayKey(idCmd)
			rec, found, err := m.store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return m.replay(idCmd, rec)
			}
			result, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := m.remember(ctx, key, result); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

// replayKey joins command name, caller scope and client key.
func replayKey(cmd IdempotentCommand) string {
	scope := ""
	if scoped, ok := cmd.(ScopedCommand); ok {
		scope = scoped.IdempotencyScope()
	}
	return cmd.Key() + ":" + scope + ":" + cmd.IdempotencyKey()
}

func (m idempotency) replay(cmd IdempotentCommand, rec IdempotencyRecord) (any, error) {
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	out := cmd.ResultPrototype()
	if out == nil {
		return nil, errMissingPrototype
	}
	if err := m.codec.Decode(rec.Payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m idempotency) remember(ctx context.Context, key string, result any) error {
	rec := IdempotencyRecord{Key: key, OccurredAt: m.now().UTC()}
	if result != nil {
		payload, err := m.codec.Encode(result)
		if err != nil {
			return err
		}
		rec.Payload = payload
	}
	return m.store.Save(ctx, rec)
}
