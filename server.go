package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/middlewares"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/notify"
	"bitbucket.org/rodmar/rodmar_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// Define a struct to represent the rate limiter.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
		if err != nil {
			respondError(c, "loginHandler", err)
			return
		}
		lifespan, _ := tokenCookieLifespan()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middlewares.TokenCookie, info.Token, lifespan, "/", "", config.IsProduction(), true)
		c.JSON(http.StatusOK, info)
	}
}

func tokenCookieLifespan() (int, error) {
	hours, err := strconv.Atoi(strings.TrimSpace(os.Getenv("TOKEN_HOUR_LIFESPAN")))
	if err != nil || hours <= 0 {
		return 24 * 3600, err
	}
	return hours * 3600, nil
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(middlewares.TokenCookie, "", -1, "/", "", config.IsProduction(), true)
		c.Status(http.StatusNoContent)
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// registerRoutes mounts the REST API on r. The readiness gate, CORS and rate
// limiting are installed by main.
func registerRoutes(r *gin.Engine, sessions *ledger.SessionStore, hub *notify.Hub) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/ws", middlewares.AuthMiddleware(), gin.WrapH(hub))

	r.POST("/api/login", loginHandler())
	r.POST("/api/logout", logoutHandler())

	api := r.Group("/api", middlewares.AuthMiddleware())
	adminOnly := middlewares.RequireRole(string(models.UserRoleAdmin))

	api.GET("/transacciones", listTransaccionesHandler())
	api.GET("/transacciones/pendientes", listPendientesHandler())
	api.POST("/transacciones", createTransaccionHandler())
	api.PUT("/transacciones/:id", updateTransaccionHandler())
	api.DELETE("/transacciones/bulk-delete", adminOnly, bulkDeleteTransaccionesHandler())
	api.DELETE("/transacciones/:id", deleteTransaccionHandler())
	api.PATCH("/transacciones/show-all-hidden", adminOnly, showAllHiddenTransaccionesHandler())
	api.PATCH("/transacciones/:id/hide", hideTransaccionHandler())
	api.PATCH("/transacciones/:id/completar", completeTransaccionHandler())

	api.GET("/socios/:tipo/:id/transacciones", counterpartyViewHandler(sessions))
	api.GET("/socios/:tipo/:id/transacciones/export", exportCounterpartyHandler(sessions))
	api.GET("/balances/:tipo/:id", balanceHandler())
	api.GET("/financial-summary", financialSummaryHandler())

	api.GET("/viajes", listViajesHandler())
	api.POST("/viajes", createViajeHandler())
	api.PATCH("/viajes/show-all-hidden", adminOnly, showAllHiddenViajesHandler())
	api.GET("/viajes/:id", getViajeHandler())
	api.PATCH("/viajes/:id/descargue", unloadViajeHandler())
	api.PATCH("/viajes/:id/hide", hideViajeHandler())

	registerCounterpartyRoutes(api)

	api.POST("/sesiones", openSessionHandler(sessions))
	api.POST("/sesiones/:sid/temporales", addTemporalHandler(sessions))
	api.DELETE("/sesiones/:sid/temporales/:tid", removeTemporalHandler(sessions))
	api.DELETE("/sesiones/:sid", closeSessionHandler(sessions))

	r.NoRoute(customNotFoundHandler)
}

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if config.IsProduction() {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		if len(corsConfig.AllowOrigins) == 0 {
			// deny all, cors rejects an empty allowlist without AllowOriginFunc
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", middlewares.SessionHeader, middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	return corsConfig
}

// readinessGate answers 503 until the database is connected. It runs after
// CORS so browsers can still read the status during startup.
func readinessGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" || config.GetDB() != nil {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusServiceUnavailable)
	}
}

// sweepSessions drops idle view sessions until ctx ends.
func sweepSessions(ctx context.Context, sessions *ledger.SessionStore, every time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.WithFields(logrus.Fields{"field": "sessions", "expired": n}).Debug("expired idle view sessions")
			}
		}
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	sessions := ledger.NewSessionStore(config.SessionIdleTimeout())
	hub := notify.NewHub(splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")))
	workflow.SetNotifier(hub)

	// Start the HTTP server first; until the DB is ready app endpoints return 503.
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(cors.New(corsConfig()))
	r.Use(readinessGate())

	// Optional rate limiting, needs redis.
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDRESS")})
		limit := int64(config.IntFromEnv("RATE_LIMIT_MAX_REQUESTS", 600))
		window := time.Duration(config.IntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
		r.Use(NewRateLimiter(client, limit, window).RateLimitMiddleware)
	}

	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.ErrorLogger())
	registerRoutes(r, sessions, hub)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can lock tables; run it as a separate job with SKIP_MIGRATIONS=true.
	if !config.SkipMigrations() {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go sweepSessions(sweepCtx, sessions, time.Minute, logger)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on :", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// Initialize a new RateLimiter instance.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware counts requests per client IP in a fixed window.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		// fail open, redis is optional
		c.Next()
		return
	}
	if count == 1 {
		rl.client.Expire(c.Request.Context(), key, rl.window)
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
