package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evencat/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

const uniqueViolation = "23505"

const userColumns = `id, username, password_hash, display_name,
       coalesce(subtitle, ''), coalesce(description, ''), coalesce(image_url, ''),
       created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (id, username, password_hash, display_name)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns, params.ID, params.Username, params.PasswordHash, params.DisplayName)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

// UpdateProfile overwrites only the fields present in the patch; nil
// arguments pass through COALESCE and leave the stored value alone.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch users.ProfilePatch) (*users.User, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE users
   SET display_name = COALESCE($2, display_name),
       subtitle     = COALESCE($3, subtitle),
       description  = COALESCE($4, description),
       image_url    = COALESCE($5, image_url),
       updated_at   = now()
 WHERE id = $1
RETURNING `+userColumns, id, patch.DisplayName, patch.Subtitle, patch.Description, patch.ImageURL)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Subtitle,
		&user.Description,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
