package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dom "example.com/storefront-cart/app/internal/domain/user"
)

// UserRepository reads the accounts table. Writes belong to account
// administration, which lives elsewhere.
type UserRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

const userColumns = `id, name, email, password_hash, is_active`

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, dom.NormalizeEmail(email))
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*dom.User, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(query), arg)

	var u dom.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
