package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `u.id, u.username, u.email, u.password_hash, u.role_id, r.name, u.registered_on`

// Create hashes the password and inserts the user, returning its ID.
// Username/email collisions are resolved by the unique indexes; a losing
// insert returns ErrDuplicate regardless of which column collided.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, roleID uint64, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role_id) VALUES (?,?,?,?)",
		username, email, hash, roleID)
	if err != nil {
		if isDuplicateErr(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user (with role name) by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx,
		"SELECT "+userCols+" FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email=? LIMIT 1",
		email)
}

// GetByID fetches a user (with role name) by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userCols+" FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id=? LIMIT 1",
		id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.RegisteredOn)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}
