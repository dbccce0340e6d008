package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/appointment-booking/internal/models"
)

// Account is an auth user joined with its profile.
type Account struct {
	models.User
	PasswordHash string `db:"password_hash"`
}

// AccountRepository reads auth users and profiles.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByEmail returns the account for email. Missing profiles default to the user role.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `SELECT u.id, u.email, u.encrypted_password AS password_hash, COALESCE(p.full_name, '') AS full_name, COALESCE(p.role, 'user') AS role
FROM auth.users u LEFT JOIN profiles p ON p.id = u.id
WHERE LOWER(u.email) = LOWER($1) LIMIT 1`
	var account Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	account.Role = models.ParseUserRole(string(account.Role))
	return &account, nil
}
