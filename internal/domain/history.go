package domain

import "time"

// HistoryEntry is an append-only audit record of one action taken on a
// ticket. ActorID is deliberately not a foreign key: it may keep pointing at
// a user that no longer exists, and 0 means the actor is unknown.
type HistoryEntry struct {
	ID         int64
	TicketID   int64
	Action     string
	ActorID    int64
	OccurredAt time.Time
}
