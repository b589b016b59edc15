package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/utils"
)

// minPasswordLen rejects obviously malformed login input before any
// store lookup. Registration enforces its own, stricter minimum.
const minPasswordLen = 4

// UserSource is the read side of the user store the verifier needs.
// *repository.UserRepo satisfies it; tests supply fakes.
type UserSource interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// Service verifies credential pairs against stored users. It is the
// sole place an unauthenticated request is promoted to an identity.
type Service struct {
	users UserSource
}

func NewService(users UserSource) *Service { return &Service{users: users} }

// Authorize checks a username/password pair. Check order is fixed:
// input shape, existence, approval, active flag, then the password.
// Surfacing approval/inactive before the password check trades a small
// amount of account-existence leakage for operational clarity; the
// generic ErrBadCredentials covers everything else.
func (s *Service) Authorize(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || len(password) < minPasswordLen {
		return nil, ErrBadCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	if !u.Approved {
		return nil, ErrPendingApproval
	}
	if !u.IsActive {
		return nil, ErrInactive
	}

	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return &u, nil
}
