package auth

import (
	"net/http"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

// Session carries the identity claims extracted from a verified token.
// Claims are trusted as issued; role or active-state changes made after
// issuance only take effect when a new token is minted (re-login or
// refresh rotation).
type Session struct {
	UserID   uint64
	Username string
	Role     model.Role
}

// Mode selects how a denial is expressed: pages navigate, actions get
// plain status codes.
type Mode int

const (
	// ActionMode denials are 401/403 JSON responses.
	ActionMode Mode = iota
	// PageMode denials are redirects to the login page or dashboard.
	PageMode
)

// DecisionKind is the outcome category of a gate decision.
type DecisionKind int

const (
	Allow DecisionKind = iota
	Redirect
	Reject
)

// Decision is the per-request authorization verdict.
type Decision struct {
	Kind   DecisionKind
	Path   string // redirect target when Kind == Redirect
	Status int    // HTTP status when Kind == Reject
}

// Navigation targets for PageMode denials.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decide evaluates a session against an optional role requirement.
// required == "" means any authenticated caller is admitted. Decide
// cannot see a mutation's target, so the self-action guard on admin
// endpoints lives with the handlers.
func Decide(sess *Session, required model.Role, mode Mode) Decision {
	if sess == nil {
		if mode == PageMode {
			return Decision{Kind: Redirect, Path: LoginPath}
		}
		return Decision{Kind: Reject, Status: http.StatusUnauthorized}
	}
	if required != "" && sess.Role != required {
		if mode == PageMode {
			return Decision{Kind: Redirect, Path: DashboardPath}
		}
		return Decision{Kind: Reject, Status: http.StatusForbidden}
	}
	return Decision{Kind: Allow}
}
