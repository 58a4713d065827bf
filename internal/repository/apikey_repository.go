package repository

import (
	"context"
	"database/sql"

	"github.com/openpoi/poi-directory/internal/model"
	"github.com/openpoi/poi-directory/internal/utils"
)

// MaxActiveKeysPerUser caps how many active API keys one user may hold.
// Enforced at creation time; the check-then-insert is racy in theory, but
// the worst case is one key over the cap, which revocation corrects.
const MaxActiveKeysPerUser = 3

type APIKeyRepo struct{ DB *sql.DB }

func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo { return &APIKeyRepo{DB: db} }

// Create issues a fresh key for the user.  Returns ErrKeyLimitReached when
// the user already holds MaxActiveKeysPerUser active keys.
func (r *APIKeyRepo) Create(ctx context.Context, userID uint64) (model.APIKey, error) {
	var active int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM api_keys WHERE user_id=? AND is_active=1", userID).
		Scan(&active)
	if err != nil {
		return model.APIKey{}, err
	}
	if active >= MaxActiveKeysPerUser {
		return model.APIKey{}, ErrKeyLimitReached
	}

	value := utils.NewAPIKeyValue()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO api_keys (`key`, user_id, is_active) VALUES (?,?,1)",
		value, userID)
	if err != nil {
		if isDuplicateErr(err) {
			return model.APIKey{}, ErrDuplicate
		}
		return model.APIKey{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.APIKey{}, err
	}
	return r.getByID(ctx, uint64(id))
}

// ListByUser returns all keys owned by a user, newest first.
func (r *APIKeyRepo) ListByUser(ctx context.Context, userID uint64) ([]model.APIKey, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, `key`, user_id, created_on, is_active FROM api_keys WHERE user_id=? ORDER BY created_on DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.APIKey, 0, MaxActiveKeysPerUser)
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.Key, &k.UserID, &k.CreatedOn, &k.IsActive); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// DeleteOwned removes a key by value, but only when it belongs to the
// given user.  A key owned by someone else deletes zero rows and reports
// ErrNotFound, so callers never learn whether the value exists at all.
func (r *APIKeyRepo) DeleteOwned(ctx context.Context, keyValue string, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM api_keys WHERE `key`=? AND user_id=?", keyValue, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActiveByValue resolves an active key to itself and its owning user.
// Inactive or unknown keys report ErrNotFound.
func (r *APIKeyRepo) GetActiveByValue(ctx context.Context, keyValue string) (model.APIKey, model.User, error) {
	var k model.APIKey
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT k.id, k.key, k.user_id, k.created_on, k.is_active,
		        u.id, u.username, u.email, u.password_hash, u.role_id, r.name, u.registered_on
		 FROM api_keys k
		 JOIN users u ON u.id = k.user_id
		 JOIN roles r ON r.id = u.role_id
		 WHERE k.key=? AND k.is_active=1 LIMIT 1`, keyValue).
		Scan(&k.ID, &k.Key, &k.UserID, &k.CreatedOn, &k.IsActive,
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.RegisteredOn)
	if err == sql.ErrNoRows {
		return model.APIKey{}, model.User{}, ErrNotFound
	}
	return k, u, err
}

func (r *APIKeyRepo) getByID(ctx context.Context, id uint64) (model.APIKey, error) {
	var k model.APIKey
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, `key`, user_id, created_on, is_active FROM api_keys WHERE id=? LIMIT 1", id).
		Scan(&k.ID, &k.Key, &k.UserID, &k.CreatedOn, &k.IsActive)
	if err == sql.ErrNoRows {
		return model.APIKey{}, ErrNotFound
	}
	return k, err
}
