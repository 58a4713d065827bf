package database

import (
	"context"
	"database/sql"
)

// schema holds the DDL for every table this service owns.  Statements are
// idempotent so Migrate can run on every startup.  Uniqueness of
// usernames, emails and key values is enforced here; concurrent
// registrations and key issuance race on these indexes and lose with a
// duplicate-key error rather than corrupting state.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		UNIQUE KEY uq_roles_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(80)  NOT NULL,
		email         VARCHAR(120) NOT NULL,
		password_hash VARCHAR(128) NOT NULL,
		role_id       BIGINT UNSIGNED NOT NULL,
		registered_on DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email),
		CONSTRAINT fk_users_role FOREIGN KEY (role_id) REFERENCES roles(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS api_keys (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		` + "`key`" + `      VARCHAR(128) NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		created_on DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_active  TINYINT(1) NOT NULL DEFAULT 1,
		UNIQUE KEY uq_api_keys_key (` + "`key`" + `),
		KEY idx_api_keys_user (user_id),
		CONSTRAINT fk_api_keys_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS pois (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		latitude    DOUBLE NOT NULL,
		longitude   DOUBLE NOT NULL,
		address     VARCHAR(500) NULL,
		province    VARCHAR(100) NULL,
		city        VARCHAR(100) NULL,
		category    VARCHAR(100) NULL,
		description TEXT NULL,
		has_image   TINYINT(1) NOT NULL DEFAULT 0,
		image_url   VARCHAR(500) NULL,
		has_website TINYINT(1) NOT NULL DEFAULT 0,
		website_url VARCHAR(500) NULL,
		created_by  BIGINT UNSIGNED NULL,
		created_on  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_on  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_pois_name (name),
		KEY idx_pois_province (province),
		KEY idx_pois_category (category),
		KEY idx_pois_has_image (has_image),
		KEY idx_pois_has_website (has_website),
		CONSTRAINT fk_pois_creator FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  Safe to call on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
