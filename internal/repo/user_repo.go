package repo

import (
	"context"

	dom "github.com/wl39/todo-sync/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	Create(ctx context.Context, email, passwordHash string, name *string) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetBySlug(ctx context.Context, slug string) (dom.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
	UpdateSharing(ctx context.Context, id int64, mode dom.ShareMode, slug, editToken *string) (dom.User, error)
}

const userColumns = `id, email, password_hash, name, public_slug, share_mode, edit_token, is_active, created_at, updated_at, last_login_at`

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func scanUser(row pgx.Row) (dom.User, error) {
	var u dom.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.PublicSlug,
		&u.ShareMode, &u.EditToken, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	return u, err
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, email, passwordHash string, name *string) (dom.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, email, passwordHash, name))
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetBySlug returns the user owning a public slug.
func (r *PGUserRepo) GetBySlug(ctx context.Context, slug string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE public_slug = $1`, slug))
}

// TouchLastLogin records a successful login.
func (r *PGUserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	return err
}

// UpdateSharing stores the sharing settings and returns the updated user.
func (r *PGUserRepo) UpdateSharing(ctx context.Context, id int64, mode dom.ShareMode, slug, editToken *string) (dom.User, error) {
	query := `
		UPDATE users SET share_mode = $2, public_slug = $3, edit_token = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, mode, slug, editToken))
}
