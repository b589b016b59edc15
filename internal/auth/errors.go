// Package auth holds the credential verification and authorization
// decisions the rest of the service builds on. Expected business
// conditions are sentinel errors so handlers can map them to messages
// and status codes without string matching.
package auth

import "errors"

var (
	// ErrBadCredentials covers unknown username, wrong password and
	// malformed input alike so responses never confirm which half of a
	// credential pair was wrong.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrPendingApproval means the credentials were otherwise valid but
	// the account has not been approved by an admin yet. Deliberately
	// distinct from ErrBadCredentials: telling a user their own account
	// awaits approval leaks nothing useful in this threat model.
	ErrPendingApproval = errors.New("account is pending admin approval")

	// ErrInactive means the account was administratively suspended.
	ErrInactive = errors.New("account is inactive")
)
