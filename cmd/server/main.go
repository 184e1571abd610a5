package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/governance-api/internal/config"
	"github.com/yukikurage/governance-api/internal/database"
	"github.com/yukikurage/governance-api/internal/handlers"
	"github.com/yukikurage/governance-api/internal/middleware"
	"github.com/yukikurage/governance-api/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sqlDB, err := database.GetDB().DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.LoggerMiddleware())

	// Sessions are issued by the surrounding application; this service only reads them
	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.Session.Secret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Session.CookieName, store))

	r.GET("/health", handlers.HealthCheck(sqlDB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mode := cfg.Governance.Mode()
	handlers.RegisterRoutes(r, handlers.NewServices(database.GetDB(), mode))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("server starting", "addr", addr, "completion_mode", mode)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
