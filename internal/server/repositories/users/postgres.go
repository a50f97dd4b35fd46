package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

const userColumns = `id, username, password_hash, nickname, email, phone, avatar, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user and fills in its generated id and timestamps. A taken
// username yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, password_hash, nickname, email, phone, avatar)
         VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.PasswordHash, user.Nickname, user.Email, user.Phone, user.Avatar).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE lower(username) = lower($1)
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetForUpdate locks the user row until the surrounding transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		 WHERE id = $1
		 FOR UPDATE
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateProfile applies the non-nil fields of patch. Empty email or phone
// clear the column.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {

	query :=
		`UPDATE users SET
		   nickname   = COALESCE($2, nickname),
		   email      = CASE WHEN $3::boolean THEN NULLIF($4, '') ELSE email END,
		   phone      = CASE WHEN $5::boolean THEN NULLIF($6, '') ELSE phone END,
		   avatar     = COALESCE($7, avatar),
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, id,
		patch.Nickname,
		patch.Email != nil, deref(patch.Email),
		patch.Phone != nil, deref(patch.Phone),
		patch.Avatar)

	return r.scanOne(row)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = NOW()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var email, phone sql.NullString

	err := row.Scan(&user.ID, &user.UserName, &user.PasswordHash, &user.Nickname,
		&email, &phone, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if email.Valid {
		user.Email = &email.String
	}
	if phone.Valid {
		user.Phone = &phone.String
	}

	return user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
