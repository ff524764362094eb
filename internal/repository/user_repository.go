package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ecocoleta/ecocoleta-backend/internal/model"
	"github.com/ecocoleta/ecocoleta-backend/internal/utils"
)

var (
	// ErrEmailExists signals a signup attempt with an already-registered email.
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound signals a lookup miss; distinct from storage errors.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepo persists users together with their session state (active
// flag and current refresh-token hash).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,is_active,refresh_token_hash,created_at"

// Create inserts a user with a fresh UUID and is_active=false and
// returns the stored record.  The password is hashed before it touches
// the database.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, is_active) VALUES (?,?,?,?,?,FALSE)",
		id, name, email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var (
		u    model.User
		hash sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	if hash.Valid {
		u.RefreshTokenHash = &hash.String
	}
	return u, nil
}

// SetActive flips the per-user active flag that gates authenticated access.
func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// StoreRefreshHash unconditionally replaces the stored refresh-token
// hash.  Used at login, where no prior token needs to survive; issuing
// a new session invalidates all others.
func (r *UserRepo) StoreRefreshHash(ctx context.Context, id, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET refresh_token_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RotateRefreshHash swaps the stored hash for a new one only while the
// stored value is still the one the caller just verified.  Two refresh
// calls racing for the same user both read the same prior hash; the
// loser's update matches zero rows and gets ErrConflict instead of
// silently clobbering the winner's session.
func (r *UserRepo) RotateRefreshHash(ctx context.Context, id, oldHash, newHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=? AND refresh_token_hash=?",
		newHash, id, oldHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// ClearRefreshHash revokes the current refresh token by nulling its
// stored hash.  Called at logout.
func (r *UserRepo) ClearRefreshHash(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET refresh_token_hash=NULL WHERE id=?", id)
	return err
}
