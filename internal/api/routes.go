package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/kieswet-engine/internal/ws"
)

// APIHandler holds the dependencies every handler needs: persistence and
// the live-update hub. It carries no election-law behavior of its own —
// every handler is a thin translation between HTTP and the core's pure
// operations in internal/dataentry, internal/apportionment, and
// internal/nomination.
type APIHandler struct {
	store Store
	hub   *ws.Hub
}

// SetupRouter builds the gin.Engine: a CORS middleware closure reading
// ALLOWED_ORIGINS, a public route group (health check, WebSocket stream,
// read-only status), and a protected group guarded by AuthMiddleware plus
// a rate limiter.
func SetupRouter(store Store, hub *ws.Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	handler := &APIHandler{store: store, hub: hub}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", hub.Subscribe)
		pub.GET("/elections/:electionId", handler.handleGetElection)
		pub.GET("/elections/:electionId/status", handler.handleGetStatus)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(30, 10).Middleware())
	{
		protected.POST("/elections", handler.handleCreateElection)
		protected.POST("/elections/:electionId/stations/:stationId/entries", handler.handleEntries)
		protected.POST("/elections/:electionId/apportionment", handler.handleComputeApportionment)
		protected.GET("/elections/:electionId/apportionment", handler.handleGetApportionment)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
