package api

import (
	"net/http"
	"time"

	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sessionCookie carries the browser session id that scopes the
// session cache.
const sessionCookie = "honbob_session"

// sessionKey is the gin context key holding the resolved session id.
const sessionKey = "session_id"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(sessionMiddleware())

	// Handlers
	availabilityHandler := NewAvailabilityHandler(services, log)
	rosterHandler := NewRosterHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)

	// API v1
	v1 := router.Group("/v1")
	{
		availability := v1.Group("/availability")
		{
			availability.POST("", availabilityHandler.Submit)
			availability.GET("/me", availabilityHandler.MyRecord)
		}

		roster := v1.Group("/roster")
		{
			roster.GET("", rosterHandler.GetRoster)
			roster.GET("/events", rosterHandler.StreamEvents)
			roster.POST("/reserve", rosterHandler.Reserve)
			roster.DELETE("/:id", rosterHandler.Delete)
			roster.POST("/undo", rosterHandler.Undo)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "honbob",
	})
}

// sessionID returns the request's session id set by the middleware.
func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// sessionMiddleware resolves or issues the session cookie
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(sessionCookie, sid, 60*60*24*30, "/", "", false, true)
		}
		c.Set(sessionKey, sid)
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
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
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
