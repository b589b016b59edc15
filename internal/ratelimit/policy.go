package ratelimit

import "time"

// Default attempt budgets for the auth endpoints. Identifiers are
// namespaced by purpose (e.g. "login_alice", "register_alice") so the
// two pools never collide for the same username.
var (
	PolicyLogin    = Policy{MaxAttempts: 5, Window: 15 * time.Minute}
	PolicyRegister = Policy{MaxAttempts: 3, Window: 60 * time.Minute}
)

// LoginKey returns the limiter identifier for login attempts by username.
func LoginKey(username string) string { return "login_" + username }

// RegisterKey returns the limiter identifier for registration attempts.
func RegisterKey(username string) string { return "register_" + username }
