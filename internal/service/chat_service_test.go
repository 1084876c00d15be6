package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/events"
)

func TestPostMessage(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memStore, *ChatService, *domain.Ticket) {
		t.Helper()
		store := newMemStore()
		owner := store.seedUser("Ana", "ana@example.com", 1)
		store.seedUser("Bruno", "bruno@example.com", 2)
		ticketSvc := newTicketService(store, nil)
		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)
		return store, NewChatService(ChatDependencies{Store: store}), ticket
	}

	t.Run("sender is the owner and recipient the assignee", func(t *testing.T) {
		_, chatSvc, ticket := setup(t)

		msg, err := chatSvc.PostMessage(ctx, ticket.ID, "  preciso de ajuda  ", nil)
		require.NoError(t, err)

		assert.Equal(t, "preciso de ajuda", msg.Body)
		assert.Equal(t, domain.ChatTypeUser, msg.MessageType)
		require.NotNil(t, msg.SenderID)
		assert.Equal(t, ticket.OwnerID, *msg.SenderID)
		require.NotNil(t, msg.RecipientID)
		assert.Equal(t, *ticket.AssigneeID, *msg.RecipientID)
	})

	t.Run("body is clamped to the storage bound", func(t *testing.T) {
		_, chatSvc, ticket := setup(t)

		msg, err := chatSvc.PostMessage(ctx, ticket.ID, strings.Repeat("a", domain.MaxChatMessageLen+50), nil)
		require.NoError(t, err)
		assert.Len(t, msg.Body, domain.MaxChatMessageLen)
	})

	t.Run("clamp counts characters and never splits a rune", func(t *testing.T) {
		_, chatSvc, ticket := setup(t)

		// An accented rune straddling the limit must survive whole, not as a
		// dangling lead byte.
		body := strings.Repeat("a", domain.MaxChatMessageLen-1) + "é" + strings.Repeat("b", 40)
		msg, err := chatSvc.PostMessage(ctx, ticket.ID, body, nil)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(msg.Body))
		assert.Equal(t, domain.MaxChatMessageLen, utf8.RuneCountInString(msg.Body))
		assert.True(t, strings.HasSuffix(msg.Body, "é"))
	})

	t.Run("multi-byte body within the character limit is untouched", func(t *testing.T) {
		_, chatSvc, ticket := setup(t)

		body := strings.Repeat("ã", domain.MaxChatMessageLen)
		msg, err := chatSvc.PostMessage(ctx, ticket.ID, body, nil)
		require.NoError(t, err)
		assert.Equal(t, body, msg.Body)
	})

	t.Run("non-positive parent id is dropped", func(t *testing.T) {
		_, chatSvc, ticket := setup(t)

		zero := int64(0)
		msg, err := chatSvc.PostMessage(ctx, ticket.ID, "oi", &zero)
		require.NoError(t, err)
		assert.Nil(t, msg.ParentID)
	})

	t.Run("missing ticket is not found", func(t *testing.T) {
		_, chatSvc, _ := setup(t)

		_, err := chatSvc.PostMessage(ctx, 404, "oi", nil)
		requireDomainErr(t, err, "NOT_FOUND")
	})

	t.Run("blank body is rejected", func(t *testing.T) {
		_, chatSvc, ticket := setup(t)

		_, err := chatSvc.PostMessage(ctx, ticket.ID, "   ", nil)
		requireDomainErr(t, err, "VALIDATION_FAILED")
	})

	t.Run("publishes a preview event", func(t *testing.T) {
		store := newMemStore()
		owner := store.seedUser("Ana", "ana@example.com", 1)
		ticketSvc := newTicketService(store, nil)
		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)

		dispatcher := events.NewInMemoryDispatcher()
		var payload events.ChatMessageAddedPayload
		dispatcher.Subscribe(events.EventChatMessageAdded, func(ctx context.Context, e events.Event) error {
			payload = e.Payload.(events.ChatMessageAddedPayload)
			return nil
		})
		chatSvc := NewChatService(ChatDependencies{Store: store, Dispatcher: dispatcher})

		long := strings.Repeat("x", 300)
		msg, err := chatSvc.PostMessage(ctx, ticket.ID, long, nil)
		require.NoError(t, err)
		assert.Equal(t, msg.ID, payload.MessageID)
		assert.Len(t, payload.BodyPreview, 120)
		assert.True(t, strings.HasSuffix(payload.BodyPreview, "..."))
	})
}

func TestListMessages(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := store.seedUser("Ana", "ana@example.com", 1)
	ticketSvc := newTicketService(store, nil)
	chatSvc := NewChatService(ChatDependencies{Store: store})

	first, err := ticketSvc.OpenTicket(ctx, owner.ID, "um")
	require.NoError(t, err)
	second, err := ticketSvc.OpenTicket(ctx, owner.ID, "dois")
	require.NoError(t, err)

	_, err = chatSvc.PostMessage(ctx, first.ID, "a", nil)
	require.NoError(t, err)
	_, err = chatSvc.PostMessage(ctx, second.ID, "b", nil)
	require.NoError(t, err)

	scoped, err := chatSvc.ListMessages(ctx, &first.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	all, err := chatSvc.ListMessages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAIResults(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	chatSvc := NewChatService(ChatDependencies{Store: store})

	t.Run("result payload is clamped", func(t *testing.T) {
		result, err := chatSvc.SaveAIResult(ctx, 1, strings.Repeat("j", domain.MaxAIResultLen+10))
		require.NoError(t, err)
		assert.Len(t, result.ResultJSON, domain.MaxAIResultLen)

		stored, err := chatSvc.GetAIResult(ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, result.ResultJSON, stored.ResultJSON)
	})

	t.Run("result clamp keeps valid utf8", func(t *testing.T) {
		payload := strings.Repeat("x", domain.MaxAIResultLen-1) + "ção"
		result, err := chatSvc.SaveAIResult(ctx, 1, payload)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(result.ResultJSON))
		assert.Equal(t, domain.MaxAIResultLen, utf8.RuneCountInString(result.ResultJSON))
		assert.True(t, strings.HasSuffix(result.ResultJSON, "ç"))
	})

	t.Run("missing message id is rejected", func(t *testing.T) {
		_, err := chatSvc.SaveAIResult(ctx, 0, "{}")
		requireDomainErr(t, err, "VALIDATION_FAILED")
	})

	t.Run("list respects the limit newest first", func(t *testing.T) {
		store := newMemStore()
		svc := NewChatService(ChatDependencies{Store: store})
		for i := 0; i < 5; i++ {
			_, err := svc.SaveAIResult(ctx, 1, "{}")
			require.NoError(t, err)
		}
		results, err := svc.ListAIResults(ctx, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Greater(t, results[0].ID, results[1].ID)
	})
}
