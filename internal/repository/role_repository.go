package repository

import (
	"context"
	"database/sql"

	"github.com/openpoi/poi-directory/internal/model"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Seed inserts the closed set of roles if they are missing.  Runs at
// startup; roles are immutable afterwards.
func (r *RoleRepo) Seed(ctx context.Context) error {
	for _, name := range []string{model.RoleAdmin, model.RolePublicUser} {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO roles (name) VALUES (?)", name); err != nil {
			return err
		}
	}
	return nil
}

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM roles WHERE name=? LIMIT 1", name).
		Scan(&role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return role, err
}
