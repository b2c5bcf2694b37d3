package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/service"
)

// requestTimeout bounds every store call made on behalf of a request.
const requestTimeout = 5 * time.Second

// Deps is everything the routes need.  Redis and DB may be nil; the cache,
// rate limiter and database health check are then skipped.
type Deps struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Offers     *service.OfferService
	Categories *service.CategoryService
	Comments   *service.CommentService

	DB        handler.Pinger
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Log       *zap.Logger
}

// New builds the Echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.Timeout(requestTimeout))

	RegisterRoutes(e, d.DB)
	RegisterUser(e, d)
	RegisterOffer(e, d)
	RegisterCategory(e, d)
	return e
}

// RegisterRoutes registers routes that do not belong to any resource.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}
