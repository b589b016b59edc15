package model

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"USER", RoleUser, true},
		{"ADMIN", RoleAdmin, true},
		{"admin", "", false},
		{"", "", false},
		{"ROOT", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanAuthenticate(t *testing.T) {
	u := User{Approved: true, IsActive: true}
	if !u.CanAuthenticate() {
		t.Fatal("approved active user must authenticate")
	}
	u.Approved = false
	if u.CanAuthenticate() {
		t.Fatal("unapproved user must not authenticate")
	}
	u = User{Approved: true, IsActive: false}
	if u.CanAuthenticate() {
		t.Fatal("inactive user must not authenticate")
	}
}
