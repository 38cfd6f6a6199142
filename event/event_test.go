package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmit(t *testing.T) {
	t.Run("delivers and stamps the event", func(t *testing.T) {
		ch := NewChannel()
		ok := Emit(context.Background(), ch, Event{Type: StepEnd, Step: 2})

		assert.True(t, ok)
		e := <-ch
		assert.Equal(t, StepEnd, e.Type)
		assert.Equal(t, 2, e.Step)
		assert.False(t, e.Timestamp.IsZero())
	})

	t.Run("blocks until the consumer reads", func(t *testing.T) {
		ch := make(chan Event)
		done := make(chan bool)
		go func() { done <- Emit(context.Background(), ch, Event{Type: RunStart}) }()

		e := <-ch
		assert.Equal(t, RunStart, e.Type)
		assert.True(t, <-done)
	})

	t.Run("gives up when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, Emit(ctx, make(chan Event), Event{Type: RunEnd}))
	})

	t.Run("ignores a nil channel", func(t *testing.T) {
		assert.False(t, Emit(context.Background(), nil, Event{Type: RunEnd}))
	})
}
