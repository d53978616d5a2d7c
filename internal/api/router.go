package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusreg/student-registry/internal/api/handler"
	"github.com/campusreg/student-registry/internal/api/middleware"
	"github.com/campusreg/student-registry/internal/core/domain"
	"github.com/campusreg/student-registry/internal/core/service"
	mongodb "github.com/campusreg/student-registry/internal/infrastructure/db/mongo"
	redisdb "github.com/campusreg/student-registry/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("student_registry"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	regNums := redisdb.NewRegNumberAllocator(rdb)
	authService := service.NewAuthService(userRepo, regNums, jwtSecret, tokenTTL, log)
	userService := service.NewUserService(userRepo, regNums, log)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := middleware.Auth(jwtSecret)

	// --- Public auth routes ---
	e.POST("/api/register", authHandler.Register)
	e.POST("/api/login", authHandler.Login)

	// --- Authenticated routes ---
	e.GET("/api/profile", authHandler.Profile, authMiddleware)

	// --- Admin routes ---
	admin := e.Group("/api/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
