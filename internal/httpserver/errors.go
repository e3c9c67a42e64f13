package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_directory/internal/logging"
	"github.com/Skotchmaster/local_directory/internal/service"
	"github.com/Skotchmaster/local_directory/internal/tokens"
	"github.com/Skotchmaster/local_directory/internal/transport"
)

const (
	msgInvalidData     = "Invalid data provided"
	msgInvalidCategory = "Invalid category"
	msgInternal        = "Internal server error"
)

// toHTTPError maps service failures onto the error taxonomy. Errors that are
// already HTTP errors pass through.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	switch {
	case errors.Is(err, service.ErrInvalidCategory):
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCategory).SetInternal(err)
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidData).SetInternal(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials").SetInternal(err)
	case errors.Is(err, tokens.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token.").SetInternal(err)
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden").SetInternal(err)
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
}

func detail(he *echo.HTTPError) string {
	if he.Internal != nil {
		var inner *echo.HTTPError
		if errors.As(he.Internal, &inner) {
			return fmt.Sprint(inner.Message)
		}
		return he.Internal.Error()
	}
	return http.StatusText(he.Code)
}

// HTTPErrorHandler renders every error as {"message": ..., "error": ...}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he := toHTTPError(err)

	body := transport.ErrorResponse{
		Message: fmt.Sprint(he.Message),
		Error:   detail(he),
	}
	if he.Code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed",
			"status", he.Code, "error", body.Error)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is not a valid id").SetInternal(fmt.Errorf("parse %s %q", name, raw))
	}
	return uint(id), nil
}

func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidData).SetInternal(err)
	}
	return nil
}

// validationMessage strips the sentinel prefix so clients see the reason.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}
