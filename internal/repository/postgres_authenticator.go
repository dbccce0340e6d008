package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

type accountFinder interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// PostgresAuthenticator verifies passwords against auth.users and issues HS256
// access tokens shaped like the hosted auth service's.
type PostgresAuthenticator struct {
	accounts accountFinder
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewPostgresAuthenticator(accounts accountFinder, secret string, ttl time.Duration) *PostgresAuthenticator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PostgresAuthenticator{accounts: accounts, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (a *PostgresAuthenticator) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	account, err := a.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")
		}
		return nil, databaseError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid login credentials")
	}

	now := a.now().UTC()
	expiresAt := now.Add(a.ttl)
	claims := models.AccessClaims{
		Email: account.Email,
		Role:  "authenticated",
		UserMetadata: models.UserMetadata{
			FullName: account.FullName,
			Role:     string(account.Role),
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &models.Session{
		ID:          uuid.NewString(),
		User:        account.User,
		AccessToken: signed,
		ExpiresAt:   expiresAt,
	}, nil
}

// SignOut has nothing to revoke remotely: access tokens are stateless and expire on
// their own, and the session record is dropped by the session service.
func (a *PostgresAuthenticator) SignOut(context.Context, *models.Session) error {
	return nil
}
