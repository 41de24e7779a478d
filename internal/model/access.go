package model

import "time"

// User statuses.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// Role is a named permission set.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User is a back-office operator. PasswordHash never leaves the server.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	ImageKey     string     `json:"image_key,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	Status       string     `json:"status"`
	RoleID       string     `json:"role_id"`
	RoleName     string     `json:"role"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	RoleID      string   `json:"role_id"`
	RoleName    string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Can reports whether the principal holds permission id.
func (p *Principal) Can(id string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if perm == id {
			return true
		}
	}
	return false
}
