package api

import (
	"net/http"
	"time"

	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, db *database.DB, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	authHandler := NewAuthHandler(services, log)
	userHandler := NewUserHandler(services, log)
	postHandler := NewPostHandler(services, log)
	imageHandler := NewImageHandler(services, cfg, log)

	authRequired := RequireAuth(services.Auth, log)
	editorWrite := RequireRole("editor", "admin")
	adminOnly := RequireRole("admin")

	// Health check
	router.GET("/health", healthCheck(db))

	// Authentication
	router.POST("/auth/login", authHandler.Login)
	router.GET("/auth/verify", authRequired, authHandler.Verify)

	// Users (admin only)
	users := router.Group("/users", authRequired, adminOnly)
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.PUT("/:id", userHandler.Update)
	}

	// Posts: public reads, editor/admin writes
	router.GET("/posts", postHandler.List)
	router.GET("/posts/count", postHandler.Count)
	router.GET("/posts/:id", postHandler.Get)
	router.POST("/posts", authRequired, editorWrite, postHandler.Create)
	router.PUT("/posts/:id", authRequired, editorWrite, postHandler.Update)
	router.DELETE("/posts/:id", authRequired, editorWrite, postHandler.Delete)

	// Images: public serving, editor/admin uploads and deletes
	router.GET("/images/:ref", imageHandler.Serve)
	router.POST("/upload", authRequired, editorWrite, imageHandler.Upload)
	router.POST("/upload-multiple", authRequired, editorWrite, imageHandler.UploadMultiple)
	router.DELETE("/upload/:ref", authRequired, editorWrite, imageHandler.Delete)

	return router
}

// healthCheck reports process and database connectivity status
func healthCheck(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driver, connected := db.State()
		status := "healthy"
		if !connected {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status": status,
			"database": gin.H{
				"driver":    driver,
				"connected": connected,
			},
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "church-content-api",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
