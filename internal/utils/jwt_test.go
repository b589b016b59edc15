package utils

import (
	"testing"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	u := &model.User{ID: 42, Username: "alice", Role: model.RoleAdmin}
	tok, err := NewAccessToken("super-secret", u, 30)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	id, username, role, err := ParseAccessToken("super-secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if id != 42 || username != "alice" || role != model.RoleAdmin {
		t.Fatalf("claims mismatch: id=%d username=%q role=%q", id, username, role)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	t.Parallel()

	u := &model.User{ID: 1, Username: "a", Role: model.RoleUser}
	tok, err := NewAccessToken("right", u, 30)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	if _, _, _, err := ParseAccessToken("wrong", tok.Token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	t.Parallel()

	u := &model.User{ID: 1, Username: "a", Role: model.RoleUser}
	tok, err := NewAccessToken("k", u, -1)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	if _, _, _, err := ParseAccessToken("k", tok.Token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseAccessTokenMalformed(t *testing.T) {
	t.Parallel()

	if _, _, _, err := ParseAccessToken("k", "not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("hunter42", 4)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !VerifyPassword(h, "hunter42") {
		t.Fatalf("correct password not accepted")
	}
	if VerifyPassword(h, "hunter43") {
		t.Fatalf("wrong password accepted")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	t.Parallel()

	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken error: %v", err)
	}
	if len(rt.Raw) != 96 { // 48 random bytes hex encoded
		t.Fatalf("raw length = %d, want 96", len(rt.Raw))
	}
	if HashRefreshRaw(rt.Raw) == rt.Raw {
		t.Fatalf("hash must differ from raw token")
	}
	if HashRefreshRaw(rt.Raw) != HashRefreshRaw(rt.Raw) {
		t.Fatalf("hash must be deterministic")
	}
}
