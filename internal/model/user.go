package model

import "time"

// Role names form a closed set.  They are seeded into the `roles` table at
// startup and referenced by name everywhere else; no other role values are
// ever created at runtime.
const (
	RoleAdmin      = "admin"
	RolePublicUser = "public_user"
)

// Role represents a row in the `roles` table.  Users reference it via
// User.RoleID.
type Role struct {
	ID   uint64 // roles.id
	Name string // roles.name (unique)
}

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login/display name.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	RoleID       – foreign key into the roles table.
//	RoleName     – role name joined from the roles table.
//	RegisteredOn – timestamp of account creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	RoleID       uint64    // users.role_id (references roles.id)
	RoleName     string    // roles.name, populated on joined reads
	RegisteredOn time.Time // users.registered_on
}

// APIKey models an entry in the `api_keys` table.  Keys are long-lived
// credentials for public read access, independently revocable by their
// owner.  A user may hold at most three active keys at once; the limit is
// enforced at creation time, not by a schema constraint.
//
// Fields:
//
//	ID        – primary key identifier.
//	Key       – unique random token value handed to the client.
//	UserID    – owner of the key.
//	CreatedOn – timestamp of creation.
//	IsActive  – whether the key is accepted for authentication.
type APIKey struct {
	ID        uint64    `json:"id"`         // api_keys.id
	Key       string    `json:"key"`        // api_keys.key (unique)
	UserID    uint64    `json:"-"`          // api_keys.user_id
	CreatedOn time.Time `json:"created_on"` // api_keys.created_on
	IsActive  bool      `json:"is_active"`  // api_keys.is_active
}
