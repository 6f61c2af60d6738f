package fiado

import (
	"errors"
	"fmt"
)

// Role grants access rights to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an operator of the ledger. Users register themselves and must be
// approved by an admin before they can be used.
type User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password,omitempty"` // opaque secret
	Role     Role   `json:"role"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Approved bool   `json:"approved"`

	version int64
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Validate checks the user before it is written.
func (u User) Validate() error {
	var errs error
	if err := validate.Struct(u); err != nil {
		errs = errors.Join(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		errs = errors.Join(errs, fmt.Errorf("%w: unknown role %q", ErrInvalid, u.Role))
	}
	if errs != nil {
		return fmt.Errorf("invalid user %q: %w", u.Username, errs)
	}
	return nil
}
