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
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	ident, _ := authmw.IdentityFrom(c)
	businessID, err := parseID(c, "businessId")
	if err != nil {
		return err
	}

	var req transport.CreateReviewRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("create_review_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	rev, err := h.Svc.Create(ctx, ident, businessID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("create_review_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create review").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, transport.Review(rev))
}

func (h *ReviewHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	businessID, err := parseID(c, "businessId")
	if err != nil {
		return err
	}

	q := service.ReviewQuery{
		BusinessID: businessID,
		SortBy:     c.QueryParam("sortBy"),
		Order:      c.QueryParam("order"),
	}
	if raw := c.QueryParam("rating"); raw != "" {
		r, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "rating is not integer").SetInternal(err)
		}
		q.Rating = &r
	}

	items, err := h.Svc.List(ctx, q)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("list_reviews_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("list_reviews_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch reviews").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Reviews(items))
}

func (h *ReviewHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.ListAll(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_all_reviews_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch reviews").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Reviews(items))
}

func (h *ReviewHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.update")

	ident, _ := authmw.IdentityFrom(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateReviewRequest
	if err := bindBody(c, &req); err != nil {
		l.Warn("update_review_failed", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	rev, err := h.Svc.Update(ctx, ident, id, service.ReviewPatch{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Review not found").SetInternal(err)
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized to update this review").SetInternal(err)
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err)).SetInternal(err)
		}
		l.Error("update_review_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update review").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.Review(rev))
}

func (h *ReviewHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	ident, _ := authmw.IdentityFrom(c)
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, ident, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Review not found").SetInternal(err)
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this review").SetInternal(err)
		}
		l.Error("delete_review_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete review").SetInternal(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Review deleted successfully"})
}
