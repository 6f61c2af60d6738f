package fiado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

func decodeUser(d Document) (User, error) {
	var u User
	if err := json.Unmarshal(d.Data, &u); err != nil {
		return User{}, fmt.Errorf("user %q is corrupted: %w", d.ID, err)
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.ID, u.version = d.ID, d.Version
	return u, nil
}

// Users lists all users.
func (l *Ledger) Users(ctx context.Context) ([]User, error) {
	docs, err := l.docs.List(ctx, Users)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	users := make([]User, 0, len(docs))
	for _, d := range docs {
		u, err := decodeUser(d)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// User returns a single user. It returns false if it does not exist.
func (l *Ledger) User(ctx context.Context, id string) (User, bool, error) {
	d, err := l.docs.Get(ctx, Users, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("could not load user %q: %w", id, err)
	}
	u, err := decodeUser(d)
	return u, err == nil, err
}

// UserByUsername finds a user by its username. It returns false if none matches.
func (l *Ledger) UserByUsername(ctx context.Context, username string) (User, bool, error) {
	docs, err := l.docs.Find(ctx, Users, "username", username)
	if err != nil {
		return User{}, false, fmt.Errorf("could not look up user %q: %w", username, err)
	}
	if len(docs) == 0 {
		return User{}, false, nil
	}
	u, err := decodeUser(docs[0])
	return u, err == nil, err
}

func (l *Ledger) putUser(ctx context.Context, u *User, expect int64) error {
	if err := u.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("could not encode user %q: %w", u.Username, err)
	}
	var d Document
	if u.ID == "" {
		d, err = l.docs.Create(ctx, Users, data)
	} else {
		d, err = l.docs.Put(ctx, Users, u.ID, data, expect)
	}
	if err != nil {
		return fmt.Errorf("could not save user %q: %w", u.Username, err)
	}
	u.ID, u.version = d.ID, d.Version
	return nil
}

// RegisterUser creates a regular user waiting for approval.
func (l *Ledger) RegisterUser(ctx context.Context, u *User) error {
	_, exists, err := l.UserByUsername(ctx, u.Username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%q: %w", u.Username, ErrUsernameTaken)
	}
	u.ID, u.Role, u.Approved = "", RoleUser, false
	if err := l.putUser(ctx, u, AnyVersion); err != nil {
		return err
	}
	log.Debug().Str("user", u.ID).Str("username", u.Username).Msg("user registered")
	return nil
}

// EnsureAdmin creates the admin user, or refreshes it if its username exists.
func (l *Ledger) EnsureAdmin(ctx context.Context, admin User) error {
	existing, exists, err := l.UserByUsername(ctx, admin.Username)
	if err != nil {
		return err
	}
	admin.ID, admin.Role, admin.Approved = "", RoleAdmin, true
	expect := AnyVersion
	if exists {
		admin.ID, expect = existing.ID, existing.version
		if admin.Password == "" {
			admin.Password = existing.Password
		}
	}
	return l.putUser(ctx, &admin, expect)
}

// UpdateUser replaces a user's profile: name, email, whatsapp and password.
// An empty password keeps the current one. Username, role and approval are
// not changed. It returns false if the user does not exist.
func (l *Ledger) UpdateUser(ctx context.Context, u User) (bool, error) {
	existing, ok, err := l.User(ctx, u.ID)
	if err != nil || !ok {
		return false, err
	}
	if u.Password == "" {
		u.Password = existing.Password
	}
	u.Username, u.Role, u.Approved = existing.Username, existing.Role, existing.Approved
	return true, l.putUser(ctx, &u, existing.version)
}

// ApproveUser grants access to a registered user. It returns false if the
// user does not exist.
func (l *Ledger) ApproveUser(ctx context.Context, id string) (bool, error) {
	u, ok, err := l.User(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	u.Approved = true
	return true, l.putUser(ctx, &u, u.version)
}

// DeleteUser permanently removes a user. A user cannot delete itself.
// It returns false if the user does not exist.
func (l *Ledger) DeleteUser(ctx context.Context, id, actingUserID string) (bool, error) {
	if id == actingUserID {
		return false, ErrSelfDelete
	}
	err := l.docs.Delete(ctx, Users, id, AnyVersion)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not delete user %q: %w", id, err)
	}
	return true, nil
}
