package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpfast/helpdesk/internal/auth"
	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/events"
	"github.com/helpfast/helpdesk/internal/repository"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// UserService manages the user directory, including the cascading removal
// workflow that keeps tickets, history, and chat referentially intact.
type UserService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	bcryptCost int
	clock      func() time.Time
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	BcryptCost int
}

// UserCreateInput describes user creation payload.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	RoleID   int64
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		bcryptCost: deps.BcryptCost,
		clock:      time.Now,
	}
}

// CreateUser registers a directory entry. Email uniqueness is
// case-insensitive; a missing role id defaults to Client.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	if input.Password == "" {
		return nil, apperrors.NewValidationError("password required", nil)
	}

	exists, err := s.store.Users().EmailExists(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}

	roleID := input.RoleID
	if roleID <= 0 {
		// The Client role is seeded first by the initial migration.
		roleID = 1
	}
	ok, err := s.store.Users().RoleExists(ctx, roleID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewValidationError("role does not exist", map[string]any{"role_id": roleID})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		RoleID:       roleID,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns the whole directory.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// RemoveUser deletes a user and cleans up every reference:
//  1. a missing user is a silent no-op;
//  2. owned tickets are fully deleted with their history and chat;
//  3. tickets the user is assigned to are released back to Open with an
//     audit entry noting the technician left;
//  4. history entries the user authored are deleted;
//  5. chat sender/recipient references are nullified;
//  6. the user row goes last.
//
// All of it commits or rolls back as one unit.
func (s *UserService) RemoveUser(ctx context.Context, userID int64) error {
	var (
		removed  bool
		deleted  int
		released int
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		removed = false
		deleted = 0
		released = 0

		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		owned, err := tx.Tickets().ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		for i := range owned {
			ticketID := owned[i].ID
			if err := tx.History().DeleteByTicket(ctx, ticketID); err != nil {
				return err
			}
			if err := tx.Chat().DeleteByTicket(ctx, ticketID); err != nil {
				return err
			}
			if err := tx.Tickets().Delete(ctx, ticketID); err != nil {
				return err
			}
			deleted++
		}

		assigned, err := tx.Tickets().ListByAssignee(ctx, userID)
		if err != nil {
			return err
		}
		now := s.clock()
		for i := range assigned {
			ticketID := assigned[i].ID
			if err := tx.Tickets().ClearAssigneeAndReopen(ctx, ticketID); err != nil {
				return err
			}
			if err := tx.History().Append(ctx, &domain.HistoryEntry{
				TicketID:   ticketID,
				Action:     "Technician removed from ticket",
				ActorID:    0,
				OccurredAt: now,
			}); err != nil {
				return err
			}
			released++
		}

		if err := tx.History().DeleteByActor(ctx, userID); err != nil {
			return err
		}
		if err := tx.Chat().NullifyUserRefs(ctx, userID); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, userID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	if removed && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRemoved,
			ActorID:   userID,
			Timestamp: s.clock(),
			Payload: events.UserRemovedPayload{
				UserID:          userID,
				TicketsDeleted:  deleted,
				TicketsReleased: released,
			},
		})
	}
	return nil
}
