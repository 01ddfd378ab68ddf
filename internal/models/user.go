package models

import (
	"fmt"
	"time"
)

// User is an account on the movie recommendation site.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username" validate:"required,max=80"`
	Email     string    `json:"email" validate:"required,max=120,email"`
	Password  string    `json:"-" validate:"max=255"` // bcrypt hash
	Name      string    `json:"name" validate:"max=255"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Follows   []int64   `json:"follows,omitempty"` // IDs of the users this user follows
}

// NewUser returns an active user created now.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the user's column constraints.
func (u *User) Validate() error {
	return validateStruct(u)
}

func (u *User) String() string {
	return fmt.Sprintf("User[id=%d, username=%s, email=%s]", u.ID, u.Username, u.Email)
}

// DisplayName returns Name, falling back to Username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
