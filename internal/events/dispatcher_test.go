package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryDispatcher(t *testing.T) {
	t.Run("delivers to subscribed handlers only", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		var created, removed int
		d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
			created++
			return nil
		})
		d.Subscribe(EventUserRemoved, func(ctx context.Context, e Event) error {
			removed++
			return nil
		})

		_ = d.Publish(context.Background(), Event{Type: EventTicketCreated})
		_ = d.Publish(context.Background(), Event{Type: EventTicketCreated})

		assert.Equal(t, 2, created)
		assert.Equal(t, 0, removed)
	})

	t.Run("handler error does not stop later handlers", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		var second bool
		d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
			return errors.New("boom")
		})
		d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
			second = true
			return nil
		})

		err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged})
		assert.NoError(t, err)
		assert.True(t, second)
	})
}
