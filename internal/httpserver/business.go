package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_directory/internal/logging"
	authmw "github.com/Skotchmaster/local_directory/internal/middleware/auth"
	"github.com/Skotchmaster/local_directory/internal/service"
	"github.com/Skotchmaster/local_directory/internal/transport"
	"github.com/Skotchmaster/local_directory/internal/util"
)

type BusinessHTTP struct {
	Svc *service.BusinessService
}

func (h *BusinessHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "business.create")

	ident, _ := authmw.IdentityFrom(c)

	var req transport.CreateBusinessRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("create_business_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	b, err := h.Svc.Create(ctx, ident, service.BusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Location:    req.Location,
		Category:    req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCategory):
			l.Warn("create_business_failed", "status", 400, "reason", "invalid category")
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCategory).SetInternal(err)
		case errors.Is(err, service.ErrValidation):
			l.Warn("create_business_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("create_business_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating business").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, transport.Business(b, transport.BusinessOptions{Owner: true}))
}

func (h *BusinessHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "business.list")

	q := service.BusinessQuery{
		Location: c.QueryParam("location"),
		SortBy:   c.QueryParam("sortBy"),
		Order:    c.QueryParam("order"),
	}
	if raw := c.QueryParam("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			l.Warn("list_businesses_failed", "status", 400, "reason", "categoryId is not integer", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "categoryId is not integer").SetInternal(err)
		}
		catID := uint(id)
		q.CategoryID = &catID
	}

	items, err := h.Svc.List(ctx, q)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("list_businesses_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("list_businesses_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch businesses").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Businesses(items, transport.BusinessOptions{Reviews: true}))
}

func (h *BusinessHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "business.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	b, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_business_failed", "status", 404, "business_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Business not found").SetInternal(err)
		}
		l.Error("get_business_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch business").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Business(b, transport.BusinessOptions{Reviews: true}))
}

func (h *BusinessHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "business.update")

	ident, _ := authmw.IdentityFrom(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateBusinessRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("update_business_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	b, err := h.Svc.Update(ctx, ident, id, service.BusinessPatch{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Location:    req.Location,
		Category:    req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Business not found").SetInternal(err)
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized to update this business").SetInternal(err)
		case errors.Is(err, service.ErrInvalidCategory):
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCategory).SetInternal(err)
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("update_business_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update business").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Business(b, transport.BusinessOptions{Owner: true}))
}

func (h *BusinessHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "business.delete")

	ident, _ := authmw.IdentityFrom(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, ident, id); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this business.").SetInternal(err)
		}
		l.Error("delete_business_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete business").SetInternal(err)
	}

	l.Info("delete_business_success", "business_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Business deleted successfully"})
}

func (h *BusinessHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()

	ident, _ := authmw.IdentityFrom(c)
	items, err := h.Svc.ListMine(ctx, ident)
	if err != nil {
		logging.FromContext(ctx).Error("list_my_businesses_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch businesses").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Businesses(items, transport.BusinessOptions{}))
}

func (h *BusinessHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "business.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed").SetInternal(err)
	}

	totalPages := util.TotalPages(res.Total, res.Size)
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: transport.Businesses(res.Items, transport.BusinessOptions{}),
		Meta: transport.PageMeta{
			Page:       res.Page,
			Size:       res.Size,
			Total:      res.Total,
			TotalPages: totalPages,
			HasPrev:    res.Page > 1,
			HasNext:    int64(res.Page) < totalPages,
		},
	})
}
