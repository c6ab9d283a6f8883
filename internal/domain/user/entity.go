package user

import "time"

type Role string

const (
	RoleWorker Role = "worker" // Clocks in and replies on comment blocks
	RoleJefe   Role = "jefe"   // Site supervisor: checklists, recounts, block notes
	RoleAdmin  Role = "admin"  // Manages users, projects and assignments
)

// ValidRoles returns every assignable role.
func ValidRoles() []string {
	return []string{string(RoleWorker), string(RoleJefe), string(RoleAdmin)}
}

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Role         Role
	PushToken    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsJefe checks if user supervises projects
func (u *User) IsJefe() bool {
	return u.Role == RoleJefe
}

// IsAdmin checks if user can manage projects and users
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
