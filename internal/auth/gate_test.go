package auth

import (
	"net/http"
	"testing"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

func TestDecideAnonymous(t *testing.T) {
	if d := Decide(nil, "", PageMode); d.Kind != Redirect || d.Path != LoginPath {
		t.Fatalf("page mode: got %+v, want redirect to %s", d, LoginPath)
	}
	if d := Decide(nil, "", ActionMode); d.Kind != Reject || d.Status != http.StatusUnauthorized {
		t.Fatalf("action mode: got %+v, want 401 reject", d)
	}
}

func TestDecideRoleMismatch(t *testing.T) {
	sess := &Session{UserID: 1, Username: "alice", Role: model.RoleUser}

	if d := Decide(sess, model.RoleAdmin, PageMode); d.Kind != Redirect || d.Path != DashboardPath {
		t.Fatalf("page mode: got %+v, want redirect to %s", d, DashboardPath)
	}
	if d := Decide(sess, model.RoleAdmin, ActionMode); d.Kind != Reject || d.Status != http.StatusForbidden {
		t.Fatalf("action mode: got %+v, want 403 reject", d)
	}
}

func TestDecideAllowed(t *testing.T) {
	user := &Session{UserID: 1, Role: model.RoleUser}
	admin := &Session{UserID: 2, Role: model.RoleAdmin}

	if d := Decide(user, "", ActionMode); d.Kind != Allow {
		t.Fatalf("no requirement: got %+v, want allow", d)
	}
	if d := Decide(admin, model.RoleAdmin, ActionMode); d.Kind != Allow {
		t.Fatalf("admin on admin route: got %+v, want allow", d)
	}
}

func TestParseSessionRoundTrip(t *testing.T) {
	// Issued through the real token path so gate and issuer stay in sync.
	u := &model.User{ID: 5, Username: "alice", Role: model.RoleAdmin}
	tok := mustToken(t, "secret", u)

	sess, err := ParseSession("secret", tok)
	if err != nil {
		t.Fatalf("ParseSession error: %v", err)
	}
	if sess.UserID != 5 || sess.Username != "alice" || sess.Role != model.RoleAdmin {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if _, err := ParseSession("other-secret", tok); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}
