package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobgate/api/internal/models"
)

// ErrTokenNotFound is returned when a presented token maps to no known
// identity. Callers must treat this as an unresolved credential, never as
// an anonymous visitor.
var ErrTokenNotFound = errors.New("token not found")

// SessionTokenRepository owns the token -> user binding. The session store
// keeps the timestamps; this table keeps who the token belongs to, which is
// how a role is resolved from a bare token.
type SessionTokenRepository struct {
	pool *pgxpool.Pool
}

func NewSessionTokenRepository(pool *pgxpool.Pool) *SessionTokenRepository {
	return &SessionTokenRepository{pool: pool}
}

func (r *SessionTokenRepository) Bind(ctx context.Context, token string, userID string) error {
	const query = `
		INSERT INTO session_tokens (token, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id
	`
	_, err := r.pool.Exec(ctx, query, token, userID)
	return err
}

// Unbind removes the binding. Unbinding an unknown token is a no-op.
func (r *SessionTokenRepository) Unbind(ctx context.Context, token string) error {
	const query = `DELETE FROM session_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

// UserFor returns the active user a token is bound to.
func (r *SessionTokenRepository) UserFor(ctx context.Context, token string) (models.User, error) {
	const query = `
		SELECT u.id, u.email, u.password_hash, u.display_name, u.role, u.status, u.created_at, u.updated_at
		FROM session_tokens st
		JOIN users u ON u.id = st.user_id
		WHERE st.token = $1 AND u.status = 'active'
	`

	row := r.pool.QueryRow(ctx, query, token)
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrTokenNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// ResolveRole maps a token to the role of the user it is bound to.
// Suspended users resolve the same as unknown tokens so a suspended
// account's outstanding sessions stop working immediately.
func (r *SessionTokenRepository) ResolveRole(ctx context.Context, token string) (models.Role, error) {
	const query = `
		SELECT u.role
		FROM session_tokens st
		JOIN users u ON u.id = st.user_id
		WHERE st.token = $1 AND u.status = 'active'
	`

	row := r.pool.QueryRow(ctx, query, token)
	var role models.Role
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return role, nil
}
