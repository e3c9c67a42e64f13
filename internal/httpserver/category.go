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

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_categories_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch categories").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Categories(items))
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	ident, _ := authmw.IdentityFrom(c)

	var req transport.CreateCategoryRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("create_category_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	cat, err := h.Svc.Create(ctx, ident, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_category_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("create_category_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating category").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, transport.Category(cat))
}
