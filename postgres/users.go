// Package postgres implements the engine's UserProvider on a Postgres
// users table via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lessonpath/authcore"
)

const uniqueViolation = "23505"

// UserStore is a pgx-backed authcore.UserProvider.
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore wraps an open connection pool.
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, first_name, last_name, phone, password_hash, role, is_active,
	code, code_expires_at, code_used, code_purpose`

func scanUser(row pgx.Row) (*authcore.UserRecord, error) {
	var (
		u    authcore.UserRecord
		code authcore.VerificationCode
		raw  *string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.Role, &u.Active,
		&raw, &code.ExpiresAt, &code.Used, (*string)(&code.Purpose),
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if raw != nil && *raw != "" {
		code.Code = *raw
		u.Code = &code
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*authcore.UserRecord, error) {
	query := `select ` + userColumns + ` from users where email = $1`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*authcore.UserRecord, error) {
	query := `select ` + userColumns + ` from users where id = $1`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `select exists(select 1 from users where email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("email existence check: %w", err)
	}
	return exists, nil
}

func (s *UserStore) Create(ctx context.Context, input authcore.CreateUserInput) (*authcore.UserRecord, error) {
	query := `insert into users
		(email, first_name, last_name, phone, password_hash, role, is_active,
		 code, code_expires_at, code_used, code_purpose)
		values ($1, $2, $3, $4, $5, $6, false, $7, $8, $9, $10)
		returning ` + userColumns

	row := s.db.QueryRow(ctx, query,
		input.Email, input.FirstName, input.LastName, input.Phone,
		input.PasswordHash, input.Role,
		input.Code.Code, input.Code.ExpiresAt, input.Code.Used, string(input.Code.Purpose),
	)

	user, err := scanUser(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, authcore.ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.exec(ctx, `update users set password_hash = $2, updated_at = now() where id = $1`, id, hash)
}

func (s *UserStore) UpdateVerificationCode(ctx context.Context, id string, code authcore.VerificationCode) error {
	query := `update users
		set code = $2, code_expires_at = $3, code_used = $4, code_purpose = $5, updated_at = now()
		where id = $1`
	return s.exec(ctx, query, id, code.Code, code.ExpiresAt, code.Used, string(code.Purpose))
}

func (s *UserStore) UpdateActiveFlag(ctx context.Context, id string, active bool) error {
	return s.exec(ctx, `update users set is_active = $2, updated_at = now() where id = $1`, id, active)
}

func (s *UserStore) exec(ctx context.Context, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authcore.ErrUserNotFound
	}
	return nil
}
