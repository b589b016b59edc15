package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/utils"
)

// UserRepo reads and mutates the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, password_hash, name, role, approved, is_active, approved_by, approved_at, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u          model.User
		approvedBy sql.NullInt64
		approvedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role,
		&u.Approved, &u.IsActive, &approvedBy, &approvedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if approvedBy.Valid {
		v := uint64(approvedBy.Int64)
		u.ApprovedBy = &v
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		u.ApprovedAt = &t
	}
	return u, nil
}

// Create inserts a user and returns its id. Usernames are stored as
// given: the identity key is case-sensitive.
func (r *UserRepo) Create(ctx context.Context, username, password, name string, role model.Role, approved bool, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, name, role, approved, is_active) VALUES (?,?,?,?,?,TRUE)",
		username, hash, name, string(role), approved)
	if err != nil {
		// MySQL duplicate-key error for the unique username index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by its exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// ListAll returns every user, newest first, for the admin table.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Approve marks a user as approved, recording the approving admin and
// the approval time.
func (r *UserRepo) Approve(ctx context.Context, id, approverID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET approved=TRUE, approved_by=?, approved_at=? WHERE id=?",
		approverID, time.Now().UTC(), id)
	return affectedOne(res, err)
}

// SetRole changes a user's role. Takes effect on the target's next
// token issuance, not on outstanding tokens.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", string(role), id)
	return affectedOne(res, err)
}

// SetActive toggles the suspension flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	return affectedOne(res, err)
}

// SetPassword replaces the stored hash. Used by the admin reset flow.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return affectedOne(res, err)
}

// Delete removes the user row. Owned reports go with it via the
// ON DELETE CASCADE on service_reports.user_id.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
