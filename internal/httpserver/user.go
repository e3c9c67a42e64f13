package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_directory/internal/logging"
	authmw "github.com/Skotchmaster/local_directory/internal/middleware/auth"
	"github.com/Skotchmaster/local_directory/internal/service"
	"github.com/Skotchmaster/local_directory/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("register_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error registering user").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, transport.AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      transport.User(res.User),
	})
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials").SetInternal(err)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error logging in").SetInternal(err)
	}

	return c.JSON(http.StatusOK, transport.AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      transport.User(res.User),
	})
}

func (h *UserHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.profile")

	ident, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
	}

	user, err := h.Svc.Profile(ctx, ident)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("profile_failed", "status", 404, "user_id", ident.UserID)
			return echo.NewHTTPError(http.StatusNotFound, "User not found").SetInternal(err)
		}
		l.Error("profile_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching profile").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Profile(user))
}
