package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TahaTehitah1/strimo-plan-util/internal/config"
)

// RateLimiter is a simple in-memory sliding-window limiter.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window per key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether key may make another request, recording it if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	var valid []time.Time
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// RateLimitMiddleware rejects requests over the limiter's window with 429.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("clientID")
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

type Server struct {
	router      *gin.Engine
	handler     *Handler
	cfg         *config.Config
	rateLimiter *RateLimiter
}

func NewServer(cfg *config.Config, handler *Handler) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))

	s := &Server{
		router:  router,
		handler: handler,
		cfg:     cfg,
		// Each order holds a browser process for tens of seconds, so the
		// purchase window is deliberately tight.
		rateLimiter: NewRateLimiter(10, time.Minute),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handler.Health)

	// Purchase API - called by the storefront backend
	api := s.router.Group("/api/v1")
	api.Use(AuthMiddleware(s.cfg.Auth.APIKey, s.cfg.Auth.JWTSecretKey))
	api.Use(RateLimitMiddleware(s.rateLimiter))
	{
		api.POST("/purchase", s.handler.Purchase)
	}
}

// Handler exposes the routed engine for the HTTP server in cmd/api.
func (s *Server) Handler() http.Handler {
	return s.router
}
