package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/utils"
)

type fakeUserSource struct {
	users map[string]model.User
	err   error
}

func (f *fakeUserSource) GetByUsername(_ context.Context, username string) (model.User, error) {
	if f.err != nil {
		return model.User{}, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := utils.HashPassword(pw, 4) // min cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return h
}

func newVerifier(t *testing.T, users ...model.User) *Service {
	t.Helper()
	m := make(map[string]model.User, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return NewService(&fakeUserSource{users: m})
}

func TestAuthorizeSuccess(t *testing.T) {
	svc := newVerifier(t, model.User{
		ID: 7, Username: "alice", Name: "Alice",
		PasswordHash: hash(t, "correct-horse"),
		Role:         model.RoleUser, Approved: true, IsActive: true,
	})

	u, err := svc.Authorize(context.Background(), "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	if u.ID != 7 || u.Role != model.RoleUser {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestAuthorizeWrongPasswordIsGeneric(t *testing.T) {
	svc := newVerifier(t, model.User{
		Username: "alice", PasswordHash: hash(t, "right"),
		Approved: true, IsActive: true,
	})

	_, wrongPw := svc.Authorize(context.Background(), "alice", "wrong-password")
	_, unknown := svc.Authorize(context.Background(), "nobody", "wrong-password")

	if !errors.Is(wrongPw, ErrBadCredentials) {
		t.Fatalf("wrong password: got %v, want ErrBadCredentials", wrongPw)
	}
	if !errors.Is(unknown, ErrBadCredentials) {
		t.Fatalf("unknown user: got %v, want ErrBadCredentials", unknown)
	}
	// The two failures must be indistinguishable to the caller.
	if wrongPw.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPw, unknown)
	}
}

func TestAuthorizeUnapprovedNeverSucceeds(t *testing.T) {
	svc := newVerifier(t, model.User{
		Username: "bob", PasswordHash: hash(t, "secret-pw"),
		Approved: false, IsActive: true,
	})

	_, err := svc.Authorize(context.Background(), "bob", "secret-pw")
	if !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("got %v, want ErrPendingApproval", err)
	}
}

func TestAuthorizeInactiveDistinctFromUnapproved(t *testing.T) {
	svc := newVerifier(t, model.User{
		Username: "carol", PasswordHash: hash(t, "secret-pw"),
		Approved: true, IsActive: false,
	})

	_, err := svc.Authorize(context.Background(), "carol", "secret-pw")
	if !errors.Is(err, ErrInactive) {
		t.Fatalf("got %v, want ErrInactive", err)
	}
}

func TestAuthorizeApprovalCheckedBeforePassword(t *testing.T) {
	// Even the correct password must not reveal anything past the
	// approval gate.
	svc := newVerifier(t, model.User{
		Username: "bob", PasswordHash: hash(t, "secret-pw"),
		Approved: false, IsActive: false,
	})

	_, err := svc.Authorize(context.Background(), "bob", "secret-pw")
	if !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("got %v, want ErrPendingApproval before inactive/password checks", err)
	}
}

func TestAuthorizeShortPasswordRejectedWithoutLookup(t *testing.T) {
	src := &fakeUserSource{err: errors.New("store must not be called")}
	svc := NewService(src)

	_, err := svc.Authorize(context.Background(), "alice", "abc")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("got %v, want ErrBadCredentials", err)
	}
}

func TestAuthorizeStoreFailureIsNotBadCredentials(t *testing.T) {
	svc := NewService(&fakeUserSource{err: errors.New("connection refused")})

	_, err := svc.Authorize(context.Background(), "alice", "long-enough")
	if err == nil || errors.Is(err, ErrBadCredentials) {
		t.Fatalf("store failure must surface as an internal error, got %v", err)
	}
}
