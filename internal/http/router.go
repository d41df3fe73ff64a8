package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/redisclient"
	"github.com/geocoder89/userhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "userhub-api"

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	slog.SetDefault(log)

	r := gin.New()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	// middleware, outermost first

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	// wire up repositories and services

	usersRepo := postgres.NewUsersRepo(pool).WithMetrics(prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	var limiterStore middlewares.CounterStore

	if cfg.RedisAddr != "" {
		limiterStore = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	limiter := middlewares.NewRateLimiter(
		cfg.RateLimit,
		time.Duration(cfg.RateWindowSeconds)*time.Second,
		limiterStore,
	)

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	healthHandler := handlers.NewHealthHandler(cfg.Env, ping)
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	adminHandler := handlers.NewAdminUsersHandler(usersRepo, cache.New(5*time.Second))

	// routes

	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "User Management System API",
			"version": "1.0.0",
			"endpoints": gin.H{
				"health": "/api/health",
				"auth":   "/api/auth",
				"users":  "/api/users",
			},
		})
	})

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.GET("/health", healthHandler.Health)

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)
		authGroup.POST("/logout", authMW.RequireAuth(), authHandler.Logout)
	}

	usersGroup := api.Group("/users")
	usersGroup.Use(authMW.RequireAuth())
	{
		usersGroup.GET("/profile", usersHandler.GetProfile)
		usersGroup.PUT("/profile", usersHandler.UpdateProfile)
		usersGroup.PUT("/password", usersHandler.ChangePassword)

		admin := usersGroup.Group("")
		admin.Use(authMW.RequireRole(user.RoleAdmin))
		{
			admin.GET("", adminHandler.ListUsers)
			admin.GET("/:id", adminHandler.GetUser)
			admin.PUT("/:id/activate", adminHandler.Activate)
			admin.PUT("/:id/deactivate", adminHandler.Deactivate)
			admin.DELETE("/:id", adminHandler.Delete)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
		})
	})

	return r
}
