package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/appointment-booking/internal/dto"
	"github.com/noah-isme/appointment-booking/internal/middleware"
	"github.com/noah-isme/appointment-booking/internal/service"
	"github.com/noah-isme/appointment-booking/internal/store"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/response"
)

// sessionFromContext returns the guarded session, answering 401 when it is missing.
func sessionFromContext(c *gin.Context) (*service.UserSession, bool) {
	us := middleware.CurrentSession(c)
	if us == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return nil, false
	}
	return us, true
}

// bindAndValidate accepts JSON or form bodies.
func bindAndValidate(c *gin.Context, validate *validator.Validate, dest interface{}, message string) bool {
	if err := c.ShouldBind(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	if err := validate.Struct(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}

func mutationResponse(status string, snap store.Snapshot) dto.MutationResponse {
	return dto.MutationResponse{Status: status, Error: snap.Error, Version: snap.Version}
}
