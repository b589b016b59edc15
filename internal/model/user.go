package model

import "time"

// Role is the closed set of account roles. Stored as an ENUM in the
// `users` table; parsing anything else fails instead of letting a loose
// string slip into an authorization decision.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// ParseRole normalizes a raw string into a Role. The second return
// value is false when the input names no known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// User mirrors the `users` table. A user may authenticate only when
// both Approved and IsActive are true; Approved is flipped once by an
// admin (recording who and when), IsActive can be toggled at any time
// to suspend the account without deleting it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique, case-sensitive login name.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name shown on reports.
//  Role         – USER or ADMIN.
//  Approved     – admin approval gate for the first login.
//  IsActive     – administrative suspension flag.
//  ApprovedBy   – id of the approving admin (nil until approved).
//  ApprovedAt   – when approval was granted (nil until approved).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Username     string     // users.username
	PasswordHash string     // users.password_hash
	Name         string     // users.name
	Role         Role       // users.role
	Approved     bool       // users.approved
	IsActive     bool       // users.is_active
	ApprovedBy   *uint64    // users.approved_by (nullable)
	ApprovedAt   *time.Time // users.approved_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// CanAuthenticate is the account-state invariant the login flow
// enforces on top of the password check.
func (u *User) CanAuthenticate() bool { return u.Approved && u.IsActive }
