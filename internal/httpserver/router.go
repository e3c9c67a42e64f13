package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	authmw "github.com/Skotchmaster/local_directory/internal/middleware/auth"
	"github.com/Skotchmaster/local_directory/internal/models"
)

type Deps struct {
	Users      *UserHTTP
	Businesses *BusinessHTTP
	Reviews    *ReviewHTTP
	Categories *CategoryHTTP
	Tokens     authmw.Verifier

	// Ready reports whether the store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error

	// AuthRateLimit is requests per second per client IP on login and
	// register. Zero disables the limiter.
	AuthRateLimit float64
	AuthRateBurst int
}

func authLimiter(limit float64, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) { return c.RealIP(), nil },
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, id string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests").SetInternal(err)
		},
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Store unavailable").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	auth := authmw.RequireAuth(d.Tokens)
	admin := authmw.RequireRole(models.RoleAdmin)

	api := e.Group("/api")

	users := api.Group("/users")
	limiter := authLimiter(d.AuthRateLimit, d.AuthRateBurst)
	users.POST("/register", d.Users.Register, limiter)
	users.POST("/login", d.Users.Login, limiter)
	users.GET("/profile", d.Users.Profile, auth)

	businesses := api.Group("/businesses")
	businesses.GET("", d.Businesses.List)
	businesses.GET("/search", d.Businesses.Search)
	businesses.GET("/admin/my-businesses", d.Businesses.ListMine, auth, admin)
	businesses.GET("/:id", d.Businesses.Get)
	businesses.POST("", d.Businesses.Create, auth, admin)
	businesses.PUT("/:id", d.Businesses.Update, auth)
	businesses.DELETE("/:id", d.Businesses.Delete, auth)

	reviews := api.Group("/reviews")
	reviews.GET("/all", d.Reviews.ListAll)
	reviews.GET("/:businessId", d.Reviews.List)
	reviews.POST("/:businessId", d.Reviews.Create, auth)
	reviews.PUT("/:id", d.Reviews.Update, auth)
	reviews.DELETE("/:id", d.Reviews.Delete, auth)

	categories := api.Group("/categories")
	categories.GET("", d.Categories.List)
	categories.POST("", d.Categories.Create, auth, admin)
}
