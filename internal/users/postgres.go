package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	seq BIGSERIAL PRIMARY KEY,
	id UUID NOT NULL,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	plan TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore is a Store backed by Postgres. Per-email linearizability
// comes from the unique index on email and single-row statements.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Create inserts a new user, relying on the unique email index for conflict
// detection.
func (s *PostgresStore) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (id, email, name, password_hash, role, plan, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, email, name, password_hash, role, plan, status, created_at, updated_at
	`

	row := s.pool.QueryRow(ctx, query,
		user.ID, NormalizeEmail(user.Email), user.Name, user.PasswordHash,
		user.Role, user.Plan, user.Status, user.CreatedAt, user.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// Get returns the user for the email.
func (s *PostgresStore) Get(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, plan, status, created_at, updated_at
		FROM users WHERE email = $1
	`

	user, err := scanUser(s.pool.QueryRow(ctx, query, NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update applies a partial update in a single UPDATE statement.
func (s *PostgresStore) Update(ctx context.Context, email string, update Update) (*User, error) {
	setClauses := []string{}
	args := []any{}
	argCount := 1

	if update.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *update.Name)
		argCount++
	}
	if update.Plan != nil {
		setClauses = append(setClauses, fmt.Sprintf("plan = $%d", argCount))
		args = append(args, *update.Plan)
		argCount++
	}
	if update.Role != nil {
		setClauses = append(setClauses, fmt.Sprintf("role = $%d", argCount))
		args = append(args, *update.Role)
		argCount++
	}
	if len(setClauses) == 0 {
		return s.Get(ctx, email)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now().UTC())
	argCount++
	args = append(args, NormalizeEmail(email))

	query := fmt.Sprintf(`
		UPDATE users SET %s WHERE email = $%d
		RETURNING id, email, name, password_hash, role, plan, status, created_at, updated_at
	`, strings.Join(setClauses, ", "), argCount)

	user, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes the user row.
func (s *PostgresStore) Delete(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users in insertion order.
func (s *PostgresStore) List(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, plan, status, created_at, updated_at
		FROM users ORDER BY seq
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.Role, &u.Plan, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
