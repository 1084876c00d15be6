package domain

import "time"

// Well-known role names seeded by the initial migration.
const (
	RoleClient     = "Client"
	RoleTechnician = "Technician"
	RoleAdmin      = "Admin"
)

// Role is a named position a user holds (client, technician, admin).
type Role struct {
	ID   int64
	Name string
}

// User is the domain model for every person in the directory. Tickets and
// chat messages reference users; they never own them.
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	RoleID       int64
	RoleName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTechnician reports whether the user can be assigned to tickets.
func (u *User) IsTechnician() bool {
	return u != nil && u.RoleName == RoleTechnician
}
