package fiado

import (
	"errors"
	"testing"
)

func TestUsers(t *testing.T) {
	ctx := t.Context()
	l := newTestLedger(t, Policy{})

	u := User{Name: "Caio", Username: "caio", Password: "pw", Role: RoleAdmin, Approved: true}
	if err := l.RegisterUser(ctx, &u); err != nil {
		t.Fatal(err)
	}
	if u.ID == "" || u.Role != RoleUser || u.Approved {
		t.Errorf("registered user = %+v, want an unapproved regular user", u)
	}
	if err := l.RegisterUser(ctx, &User{Name: "Other", Username: "caio"}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: got %v, want %v", err, ErrUsernameTaken)
	}
	if err := l.RegisterUser(ctx, &User{Name: "Bad", Username: "bad", Email: "not an email"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("invalid email: got %v, want %v", err, ErrInvalid)
	}

	if ok, err := l.ApproveUser(ctx, u.ID); !ok || err != nil {
		t.Fatalf("ApproveUser() = %v, %v", ok, err)
	}
	got, ok, err := l.UserByUsername(ctx, "caio")
	if err != nil || !ok || !got.Approved {
		t.Errorf("UserByUsername() = %+v, %v, %v", got, ok, err)
	}
	if ok, err := l.ApproveUser(ctx, "missing"); ok || err != nil {
		t.Errorf("ApproveUser(missing) = %v, %v, want false, nil", ok, err)
	}

	ok, err = l.UpdateUser(ctx, User{ID: u.ID, Name: "Caio Lima", Username: "hijack", Role: RoleAdmin})
	if !ok || err != nil {
		t.Fatalf("UpdateUser() = %v, %v", ok, err)
	}
	got, _, _ = l.User(ctx, u.ID)
	if got.Name != "Caio Lima" || got.Username != "caio" || got.Role != RoleUser || !got.Approved || got.Password != "pw" {
		t.Errorf("updated user = %+v, want only the name changed", got)
	}
	if ok, err := l.UpdateUser(ctx, User{ID: "missing", Name: "X", Username: "x"}); ok || err != nil {
		t.Errorf("UpdateUser(missing) = %v, %v, want false, nil", ok, err)
	}

	if ok, err := l.DeleteUser(ctx, u.ID, u.ID); ok || !errors.Is(err, ErrSelfDelete) {
		t.Errorf("self delete = %v, %v, want false, %v", ok, err, ErrSelfDelete)
	}
	if ok, err := l.DeleteUser(ctx, u.ID, "admin"); !ok || err != nil {
		t.Errorf("DeleteUser() = %v, %v", ok, err)
	}
	if ok, err := l.DeleteUser(ctx, u.ID, "admin"); ok || err != nil {
		t.Errorf("DeleteUser(deleted) = %v, %v, want false, nil", ok, err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := t.Context()
	l := newTestLedger(t, Policy{})

	if err := l.EnsureAdmin(ctx, User{Name: "Boss", Username: "boss", Password: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := l.EnsureAdmin(ctx, User{Name: "The Boss", Username: "boss"}); err != nil {
		t.Fatal(err)
	}
	users, err := l.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	admin := users[0]
	if admin.Name != "The Boss" || admin.Password != "first" || !admin.IsAdmin() || !admin.Approved {
		t.Errorf("admin = %+v", admin)
	}
}
