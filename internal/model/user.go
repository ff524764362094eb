package model

import "time"

// Role names accepted by the platform.  Producers schedule pickups,
// collectors and cooperatives handle them, admins manage the material
// catalog.  The set mirrors the CHECK constraint on users.role.
const (
	RoleProducer    = "PRODUTOR"
	RoleCollector   = "COLETOR"
	RoleCooperative = "COOPERATIVA"
	RoleAdmin       = "ADMIN"
)

// ValidRole reports whether the given role belongs to the fixed set.
func ValidRole(role string) bool {
	switch role {
	case RoleProducer, RoleCollector, RoleCooperative, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users`
// table.  The session state lives on the row itself: IsActive gates
// whether an otherwise-valid access token is honored, and
// RefreshTokenHash holds a slow hash of the latest refresh token (the
// plaintext token is never stored).  A nil RefreshTokenHash means no
// refresh token is currently honored for this user.
//
// Fields:
//
//	ID               – UUID primary key of the user.
//	Name             – display name.
//	Email            – unique email address.
//	PasswordHash     – bcrypt hashed password.
//	Role             – one of the Role* constants.
//	IsActive         – false until first login, true while a session is live.
//	RefreshTokenHash – hash of the current refresh token (nullable).
//	CreatedAt        – timestamp of creation.
type User struct {
	ID               string    // users.id
	Name             string    // users.name
	Email            string    // users.email
	PasswordHash     string    // users.password_hash
	Role             string    // users.role
	IsActive         bool      // users.is_active
	RefreshTokenHash *string   // users.refresh_token_hash (nullable)
	CreatedAt        time.Time // users.created_at
}
