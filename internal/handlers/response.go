package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hollando78/airgen-sub002/internal/data/graph"
	"github.com/Hollando78/airgen-sub002/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// toAPIError maps the graph layer's sentinel errors to HTTP statuses.
// Anything unrecognized is a 500 with the given fallback code.
func toAPIError(code string, err error) *apierr.Error {
	switch {
	case errors.Is(err, graph.ErrNotFound):
		return apierr.NotFound(code, err)
	case errors.Is(err, graph.ErrConflict):
		return apierr.Conflict(code, err)
	case errors.Is(err, graph.ErrRepairNeeded):
		return apierr.Conflict(code, err)
	case errors.Is(err, graph.ErrValidation):
		return apierr.BadRequest(code, err)
	default:
		return apierr.Internal(code, err)
	}
}

// RespondGraphError is the one exit path handlers use for service
// errors.
func RespondGraphError(c *gin.Context, code string, err error) {
	ae := toAPIError(code, err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
