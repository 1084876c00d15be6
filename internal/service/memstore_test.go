package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/repository"
)

// memState is the backing data of the in-memory store. Maps hold values,
// not pointers, so snapshots are cheap to clone.
type memState struct {
	roles   map[int64]string
	users   map[int64]domain.User
	tickets map[int64]domain.Ticket
	history map[int64]domain.HistoryEntry
	chat    map[int64]domain.ChatMessage
	results map[int64]domain.ChatAIResult
	faqs    map[int64]domain.FAQ
	nextID  int64

	failUserDelete error
}

func newMemState() *memState {
	return &memState{
		roles: map[int64]string{
			1: domain.RoleClient,
			2: domain.RoleTechnician,
			3: domain.RoleAdmin,
		},
		users:   map[int64]domain.User{},
		tickets: map[int64]domain.Ticket{},
		history: map[int64]domain.HistoryEntry{},
		chat:    map[int64]domain.ChatMessage{},
		results: map[int64]domain.ChatAIResult{},
		faqs:    map[int64]domain.FAQ{},
		nextID:  1,
	}
}

func (st *memState) id() int64 {
	id := st.nextID
	st.nextID++
	return id
}

func cloneI64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AssigneeID = cloneI64(t.AssigneeID)
	t.ClosedAt = cloneTime(t.ClosedAt)
	return t
}

func cloneChat(m domain.ChatMessage) domain.ChatMessage {
	m.TicketID = cloneI64(m.TicketID)
	m.SenderID = cloneI64(m.SenderID)
	m.RecipientID = cloneI64(m.RecipientID)
	m.ParentID = cloneI64(m.ParentID)
	return m
}

func (st *memState) clone() *memState {
	out := newMemState()
	out.nextID = st.nextID
	out.failUserDelete = st.failUserDelete
	for k, v := range st.roles {
		out.roles[k] = v
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.tickets {
		out.tickets[k] = cloneTicket(v)
	}
	for k, v := range st.history {
		out.history[k] = v
	}
	for k, v := range st.chat {
		out.chat[k] = cloneChat(v)
	}
	for k, v := range st.results {
		out.results[k] = v
	}
	for k, v := range st.faqs {
		out.faqs[k] = v
	}
	return out
}

// memStore implements repository.Store over memState. InTx snapshots the
// state up front and restores it when the body fails, mirroring a rollback.
type memStore struct {
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (m *memStore) Users() repository.UserRepository         { return &memUsers{st: m.state} }
func (m *memStore) Tickets() repository.TicketRepository     { return &memTickets{st: m.state} }
func (m *memStore) History() repository.HistoryRepository    { return &memHistory{st: m.state} }
func (m *memStore) Chat() repository.ChatRepository          { return &memChat{st: m.state} }
func (m *memStore) AIResults() repository.AIResultRepository { return &memResults{st: m.state} }
func (m *memStore) FAQs() repository.FAQRepository           { return &memFAQs{st: m.state} }

func (m *memStore) InTx(ctx context.Context, fn func(repository.Store) error) error {
	snapshot := m.state.clone()
	if err := fn(m); err != nil {
		*m.state = *snapshot
		return err
	}
	return nil
}

// Seeding helpers used by the tests.

func (m *memStore) seedUser(name, email string, roleID int64) *domain.User {
	st := m.state
	u := domain.User{
		ID:       st.id(),
		Name:     name,
		Email:    email,
		RoleID:   roleID,
		RoleName: st.roles[roleID],
	}
	st.users[u.ID] = u
	return &u
}

func (m *memStore) seedFAQ(question, answer string, active bool) {
	st := m.state
	f := domain.FAQ{ID: st.id(), Question: question, Answer: answer, Active: active}
	st.faqs[f.ID] = f
}

type memUsers struct{ st *memState }

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	user.ID = r.st.id()
	user.RoleName = r.st.roles[user.RoleID]
	r.st.users[user.ID] = *user
	return nil
}

func (r *memUsers) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.st.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.RoleName = r.st.roles[user.RoleID]
	r.st.users[user.ID] = *user
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *memUsers) FindByRole(ctx context.Context, roleName string) (*domain.User, error) {
	var best *domain.User
	for _, u := range r.st.users {
		if u.RoleName != roleName {
			continue
		}
		if best == nil || u.ID < best.ID {
			out := u
			best = &out
		}
	}
	if best == nil {
		return nil, pgx.ErrNoRows
	}
	return best, nil
}

func (r *memUsers) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	_, ok := r.st.roles[roleID]
	return ok, nil
}

func (r *memUsers) List(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) Delete(ctx context.Context, id int64) error {
	if r.st.failUserDelete != nil {
		return r.st.failUserDelete
	}
	delete(r.st.users, id)
	return nil
}

type memTickets struct{ st *memState }

func (r *memTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.st.id()
	r.st.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memTickets) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.st.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.st.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	t, ok := r.st.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(t)
	return &out, nil
}

func (r *memTickets) list(filter func(domain.Ticket) bool) []domain.Ticket {
	var out []domain.Ticket
	for _, t := range r.st.tickets {
		if filter(t) {
			out = append(out, cloneTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memTickets) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(func(domain.Ticket) bool { return true }), nil
}

func (r *memTickets) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	return r.list(func(t domain.Ticket) bool { return t.OwnerID == ownerID }), nil
}

func (r *memTickets) ListByAssignee(ctx context.Context, assigneeID int64) ([]domain.Ticket, error) {
	return r.list(func(t domain.Ticket) bool {
		return t.AssigneeID != nil && *t.AssigneeID == assigneeID
	}), nil
}

func (r *memTickets) ListOpenedBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	return r.list(func(t domain.Ticket) bool {
		return !t.OpenedAt.Before(from) && !t.OpenedAt.After(to)
	}), nil
}

func (r *memTickets) ClearAssigneeAndReopen(ctx context.Context, id int64) error {
	t, ok := r.st.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.AssigneeID = nil
	t.Status = domain.TicketStatusOpen
	r.st.tickets[id] = t
	return nil
}

func (r *memTickets) Delete(ctx context.Context, id int64) error {
	delete(r.st.tickets, id)
	return nil
}

type memHistory struct{ st *memState }

func (r *memHistory) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	entry.ID = r.st.id()
	r.st.history[entry.ID] = *entry
	return nil
}

func (r *memHistory) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	for _, e := range r.st.history {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}

func (r *memHistory) DeleteByTicket(ctx context.Context, ticketID int64) error {
	for id, e := range r.st.history {
		if e.TicketID == ticketID {
			delete(r.st.history, id)
		}
	}
	return nil
}

func (r *memHistory) DeleteByActor(ctx context.Context, actorID int64) error {
	for id, e := range r.st.history {
		if e.ActorID == actorID {
			delete(r.st.history, id)
		}
	}
	return nil
}

type memChat struct{ st *memState }

func (r *memChat) Create(ctx context.Context, msg *domain.ChatMessage) error {
	msg.ID = r.st.id()
	r.st.chat[msg.ID] = cloneChat(*msg)
	return nil
}

func (r *memChat) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	m, ok := r.st.chat[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneChat(m)
	return &out, nil
}

func (r *memChat) list(filter func(domain.ChatMessage) bool) []domain.ChatMessage {
	var out []domain.ChatMessage
	for _, m := range r.st.chat {
		if filter(m) {
			out = append(out, cloneChat(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memChat) ListByTicket(ctx context.Context, ticketID int64) ([]domain.ChatMessage, error) {
	return r.list(func(m domain.ChatMessage) bool {
		return m.TicketID != nil && *m.TicketID == ticketID
	}), nil
}

func (r *memChat) ListAll(ctx context.Context) ([]domain.ChatMessage, error) {
	return r.list(func(domain.ChatMessage) bool { return true }), nil
}

func (r *memChat) DeleteByTicket(ctx context.Context, ticketID int64) error {
	for id, m := range r.st.chat {
		if m.TicketID != nil && *m.TicketID == ticketID {
			delete(r.st.chat, id)
		}
	}
	return nil
}

func (r *memChat) NullifyUserRefs(ctx context.Context, userID int64) error {
	for id, m := range r.st.chat {
		changed := false
		if m.SenderID != nil && *m.SenderID == userID {
			m.SenderID = nil
			changed = true
		}
		if m.RecipientID != nil && *m.RecipientID == userID {
			m.RecipientID = nil
			changed = true
		}
		if changed {
			r.st.chat[id] = m
		}
	}
	return nil
}

type memResults struct{ st *memState }

func (r *memResults) Create(ctx context.Context, result *domain.ChatAIResult) error {
	result.ID = r.st.id()
	r.st.results[result.ID] = *result
	return nil
}

func (r *memResults) GetByID(ctx context.Context, id int64) (*domain.ChatAIResult, error) {
	res, ok := r.st.results[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &res, nil
}

func (r *memResults) ListRecent(ctx context.Context, limit int) ([]domain.ChatAIResult, error) {
	var out []domain.ChatAIResult
	for _, res := range r.st.results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memFAQs struct{ st *memState }

func (r *memFAQs) SearchActive(ctx context.Context, keywords []string, limit int) ([]domain.FAQ, error) {
	var out []domain.FAQ
	for _, f := range r.st.faqs {
		if !f.Active {
			continue
		}
		q := strings.ToLower(f.Question)
		a := strings.ToLower(f.Answer)
		for _, kw := range keywords {
			if strings.Contains(q, kw) || strings.Contains(a, kw) {
				out = append(out, f)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
