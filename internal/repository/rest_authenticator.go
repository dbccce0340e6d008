package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/appointment-booking/internal/models"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
)

// RESTAuthenticator signs users in and out against the auth API.
type RESTAuthenticator struct {
	client *RESTClient
	now    func() time.Time
}

func NewRESTAuthenticator(client *RESTClient) *RESTAuthenticator {
	return &RESTAuthenticator{client: client, now: time.Now}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID           string              `json:"id"`
		Email        string              `json:"email"`
		UserMetadata models.UserMetadata `json:"user_metadata"`
	} `json:"user"`
}

// SignInWithPassword exchanges credentials for a session. Profile fields come from
// the user metadata.
func (a *RESTAuthenticator) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var token tokenResponse
	err := a.client.do(ctx, restRequest{
		operation: "sign_in",
		method:    http.MethodPost,
		path:      "/auth/v1/token",
		query:     url.Values{"grant_type": {"password"}},
		body:      map[string]string{"email": email, "password": password},
	}, &token)
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && (appErr.Status == http.StatusBadRequest || appErr.Status == http.StatusUnauthorized) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, appErr.Message)
		}
		return nil, err
	}
	if token.AccessToken == "" || token.User.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrRemote, "sign in response is missing the session")
	}

	expiresAt := a.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if token.ExpiresAt > 0 {
		expiresAt = time.Unix(token.ExpiresAt, 0)
	}
	return &models.Session{
		ID:           uuid.NewString(),
		User:         models.UserFromMetadata(token.User.ID, token.User.Email, token.User.UserMetadata),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt.UTC(),
	}, nil
}

// SignOut invalidates the session's tokens.
func (a *RESTAuthenticator) SignOut(ctx context.Context, session *models.Session) error {
	if session == nil {
		return nil
	}
	return a.client.do(ctx, restRequest{
		operation: "sign_out",
		method:    http.MethodPost,
		path:      "/auth/v1/logout",
		token:     session.AccessToken,
	}, nil)
}
