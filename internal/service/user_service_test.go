package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/events"
)

func newUserService(store *memStore, dispatcher events.Dispatcher) *UserService {
	return NewUserService(UserDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		BcryptCost: 4,
	})
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults missing role to client", func(t *testing.T) {
		store := newMemStore()
		svc := newUserService(store, nil)

		user, err := svc.CreateUser(ctx, UserCreateInput{
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "s3cret",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.RoleID)
		assert.Equal(t, domain.RoleClient, user.RoleName)
		assert.NotEqual(t, "s3cret", user.PasswordHash)
	})

	t.Run("duplicate email conflicts case-insensitively", func(t *testing.T) {
		store := newMemStore()
		svc := newUserService(store, nil)

		_, err := svc.CreateUser(ctx, UserCreateInput{Name: "Ana", Email: "ana@example.com", Password: "x"})
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, UserCreateInput{Name: "Outra", Email: "ANA@example.com", Password: "x"})
		requireDomainErr(t, err, "CONFLICT")
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		store := newMemStore()
		svc := newUserService(store, nil)

		_, err := svc.CreateUser(ctx, UserCreateInput{Name: "Ana", Email: "a@b.c", Password: "x", RoleID: 42})
		requireDomainErr(t, err, "VALIDATION_FAILED")
	})
}

func TestRemoveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("missing user is a no-op", func(t *testing.T) {
		store := newMemStore()
		dispatcher := events.NewInMemoryDispatcher()
		var published int
		dispatcher.Subscribe(events.EventUserRemoved, func(ctx context.Context, e events.Event) error {
			published++
			return nil
		})

		svc := newUserService(store, dispatcher)
		require.NoError(t, svc.RemoveUser(ctx, 999))
		assert.Zero(t, published)
	})

	t.Run("owned tickets vanish with history and chat", func(t *testing.T) {
		store := newMemStore()
		userSvc := newUserService(store, nil)
		ticketSvc := newTicketService(store, nil)
		chatSvc := NewChatService(ChatDependencies{Store: store})

		owner := store.seedUser("Ana", "ana@example.com", 1)
		store.seedUser("Bruno", "bruno@example.com", 2)

		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)
		_, err = chatSvc.PostMessage(ctx, ticket.ID, "ajuda por favor", nil)
		require.NoError(t, err)

		require.NoError(t, userSvc.RemoveUser(ctx, owner.ID))

		_, err = store.Tickets().GetByID(ctx, ticket.ID)
		assert.Error(t, err)

		entries, err := store.History().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		msgs, err := store.Chat().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Empty(t, msgs)

		_, err = store.Users().GetByID(ctx, owner.ID)
		assert.Error(t, err)
	})

	t.Run("assigned tickets are released and reopened with an audit entry", func(t *testing.T) {
		store := newMemStore()
		userSvc := newUserService(store, nil)
		ticketSvc := newTicketService(store, nil)

		owner := store.seedUser("Ana", "ana@example.com", 1)
		tech := store.seedUser("Bruno", "bruno@example.com", 2)

		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)
		require.NotNil(t, ticket.AssigneeID)

		require.NoError(t, userSvc.RemoveUser(ctx, tech.ID))

		released, err := store.Tickets().GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Nil(t, released.AssigneeID)
		assert.Equal(t, domain.TicketStatusOpen, released.Status)

		entries, err := store.History().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Technician removed from ticket", entries[0].Action)
		assert.Zero(t, entries[0].ActorID)
	})

	t.Run("history authored by the user is deleted", func(t *testing.T) {
		store := newMemStore()
		userSvc := newUserService(store, nil)
		ticketSvc := newTicketService(store, nil)

		owner := store.seedUser("Ana", "ana@example.com", 1)
		tech := store.seedUser("Bruno", "bruno@example.com", 2)

		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)
		_, err = ticketSvc.UpdateStatus(ctx, ticket.ID, "Finalized", &tech.ID)
		require.NoError(t, err)

		entries, err := store.History().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		require.NoError(t, userSvc.RemoveUser(ctx, tech.ID))

		entries, err = store.History().ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotEqual(t, tech.ID, e.ActorID)
		}
	})

	t.Run("chat references are nullified, messages survive", func(t *testing.T) {
		store := newMemStore()
		userSvc := newUserService(store, nil)
		ticketSvc := newTicketService(store, nil)
		chatSvc := NewChatService(ChatDependencies{Store: store})

		owner := store.seedUser("Ana", "ana@example.com", 1)
		tech := store.seedUser("Bruno", "bruno@example.com", 2)

		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)
		msg, err := chatSvc.PostMessage(ctx, ticket.ID, "ajuda", nil)
		require.NoError(t, err)
		require.NotNil(t, msg.RecipientID)
		assert.Equal(t, tech.ID, *msg.RecipientID)

		require.NoError(t, userSvc.RemoveUser(ctx, tech.ID))

		kept, err := store.Chat().GetByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Nil(t, kept.RecipientID)
		require.NotNil(t, kept.SenderID)
		assert.Equal(t, owner.ID, *kept.SenderID)
	})

	t.Run("a failing step rolls back the whole cascade", func(t *testing.T) {
		store := newMemStore()
		userSvc := newUserService(store, nil)
		ticketSvc := newTicketService(store, nil)

		owner := store.seedUser("Ana", "ana@example.com", 1)
		store.seedUser("Bruno", "bruno@example.com", 2)

		ticket, err := ticketSvc.OpenTicket(ctx, owner.ID, "motivo")
		require.NoError(t, err)

		store.state.failUserDelete = errors.New("connection reset")
		err = userSvc.RemoveUser(ctx, owner.ID)
		require.Error(t, err)

		// Everything the cascade touched is back.
		_, err = store.Users().GetByID(ctx, owner.ID)
		assert.NoError(t, err)
		restored, err := store.Tickets().GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.NotNil(t, restored.AssigneeID)
	})

	t.Run("publishes removal event with counters", func(t *testing.T) {
		store := newMemStore()
		dispatcher := events.NewInMemoryDispatcher()
		var payload events.UserRemovedPayload
		dispatcher.Subscribe(events.EventUserRemoved, func(ctx context.Context, e events.Event) error {
			payload = e.Payload.(events.UserRemovedPayload)
			return nil
		})
		userSvc := newUserService(store, dispatcher)
		ticketSvc := newTicketService(store, nil)

		owner := store.seedUser("Ana", "ana@example.com", 1)
		_, err := ticketSvc.OpenTicket(ctx, owner.ID, "um")
		require.NoError(t, err)
		_, err = ticketSvc.OpenTicket(ctx, owner.ID, "dois")
		require.NoError(t, err)

		require.NoError(t, userSvc.RemoveUser(ctx, owner.ID))
		assert.Equal(t, owner.ID, payload.UserID)
		assert.Equal(t, 2, payload.TicketsDeleted)
		assert.Zero(t, payload.TicketsReleased)
	})
}
