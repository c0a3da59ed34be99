package users

import "time"

// User represents an account in the global user directory.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"userName"`
	RealName  string    `json:"realName,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}
