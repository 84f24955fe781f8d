package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/dto"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
	"github.com/ekingoksan/docker-cmd-studio/pkg/dockerrun"
)

// sendError writes the JSON response matching err. Unknown errors are
// logged and reported as 500 without detail.
func sendError(c echo.Context, err error) error {
	var verr *dockerrun.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Error: "validation failed", Fields: verr.Fields})
	}
	var perr *domain.ProfileError
	if errors.As(err, &perr) {
		return c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Error: "invalid profile", Fields: perr.Fields})
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromCtx(c.Request().Context()).Error().Err(err).Msg("request failed")
		return c.JSON(status, dto.ErrorResponse{Error: "internal server error"})
	}
	return c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfigNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfigNameTaken), errors.Is(err, domain.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidCommand), errors.Is(err, domain.ErrInvalidProfile),
		errors.Is(err, dockerrun.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders framework errors (unknown route, body too large,
// panics recovered upstream) in the same JSON shape as handler errors.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logging.FromCtx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, dto.ErrorResponse{Error: msg})
}
