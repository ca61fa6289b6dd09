package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetCommand struct{ Name string }

func (greetCommand) Key() string { return "test.greet" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestRegisterAndDispatch(t *testing.T) {
	bus := NewInMemoryBus()
	Register[greetCommand, string](bus, HandlerFunc[greetCommand, string](func(ctx context.Context, cmd greetCommand) (string, error) {
		return "hello " + cmd.Name, nil
	}))

	out, err := Dispatch[greetCommand, string](context.Background(), bus, greetCommand{Name: "ada"})

	require.NoError(t, err)
	assert.Equal(t, "hello ada", out)
	assert.Equal(t, []string{"test.greet"}, bus.Keys())
}

func TestDispatchUnknownCommand(t *testing.T) {
	bus := NewInMemoryBus()

	_, err := Dispatch[otherCommand, string](context.Background(), bus, otherCommand{})

	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestDispatchResultTypeMismatch(t *testing.T) {
	bus := NewInMemoryBus()
	Register[greetCommand, string](bus, HandlerFunc[greetCommand, string](func(context.Context, greetCommand) (string, error) {
		return "x", nil
	}))

	_, err := Dispatch[greetCommand, int](context.Background(), bus, greetCommand{})

	assert.ErrorIs(t, err, ErrResultType)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[greetCommand, string](func(context.Context, greetCommand) (string, error) { return "", nil })
	Register[greetCommand, string](bus, h)

	assert.Panics(t, func() { Register[greetCommand, string](bus, h) })
}
