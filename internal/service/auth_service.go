package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

// Authenticator exchanges credentials for a session with the data service.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
}

// AuthService provides sign-in and sign-out for browser sessions.
type AuthService struct {
	auth      Authenticator
	sessions  *SessionService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(auth Authenticator, sessions *SessionService, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{auth: auth, sessions: sessions, validator: validate, logger: logger}
}

// SignIn authenticates the credentials and stores the session on us, opening a new
// browser session when us is nil. Cached appointment data of a previous user is dropped.
func (s *AuthService) SignIn(ctx context.Context, us *UserSession, req models.SignInRequest) (*UserSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	session, err := s.auth.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("sign in failed", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	if us == nil {
		us = s.sessions.Open()
	}
	if previous := us.Auth.User(); previous == nil || previous.ID != session.User.ID {
		us.Appointments.Reset()
	}
	us.Auth.SetSession(session)

	s.logger.Info("user signed in",
		zap.String("user_id", session.User.ID),
		zap.String("role", string(session.User.Role)),
		zap.String("session_id", us.ID),
	)
	return us, nil
}

// SignOut revokes the remote session and forgets the browser session. Local state is
// cleared even when the remote call fails; that failure is returned.
func (s *AuthService) SignOut(ctx context.Context, us *UserSession) error {
	if us == nil {
		return nil
	}
	err := us.Auth.SignOut(ctx)
	us.Appointments.Reset()
	s.sessions.Close(ctx, us.ID)
	s.logger.Info("user signed out", zap.String("session_id", us.ID))
	return err
}
