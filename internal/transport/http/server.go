package transporthttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"emarknews/internal/aggregate"
	"emarknews/internal/provider"
	"emarknews/internal/store"
)

const (
	msgRefreshed     = "뉴스 데이터가 성공적으로 새로고침되었습니다."
	msgNotFound      = "요청한 리소스를 찾을 수 없습니다."
	msgInternalError = "내부 서버 오류가 발생했습니다."
	maxHistoryLimit  = 500
)

// NewsService is the aggregation surface the HTTP layer depends on.
type NewsService interface {
	Get(ctx context.Context, force bool) aggregate.Result
	Status() aggregate.Status
	Metrics() map[string]provider.Report
	Health() aggregate.Health
}

// RunLister reads the refresh audit log.
type RunLister interface {
	ListRuns(ctx context.Context, f store.Filter) ([]store.Run, error)
}

type Server struct {
	news    NewsService
	runs    RunLister
	logger  *slog.Logger
	now     func() time.Time
	started time.Time
}

// NewServer wires handlers around svc. runs may be nil when the audit log
// is disabled.
func NewServer(svc NewsService, runs RunLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		news:    svc,
		runs:    runs,
		logger:  logger,
		now:     time.Now,
		started: time.Now(),
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(s.recovery(), s.withLogging(), withCORS())

	api := r.Group("/api")
	{
		api.GET("/news", s.handleNews)
		api.POST("/refresh", s.handleRefresh)
		api.GET("/status", s.handleStatus)
		api.GET("/metrics", s.handleMetrics)
		api.GET("/refreshes", s.handleRefreshes)
	}

	r.GET("/health", s.health)
	r.GET("/swagger", serveSwaggerUI)
	r.GET("/swagger/", serveSwaggerUI)
	r.GET("/swagger/openapi.yaml", serveSwaggerYAML)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   msgNotFound,
			"path":    c.Request.URL.Path,
		})
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	h := s.news.Health()
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  s.now().UTC(),
		"uptime":     s.now().Sub(s.started).Seconds(),
		"cacheSize":  h.CacheSize,
		"lastUpdate": h.LastUpdate,
		"inProgress": h.InProgress,
	})
}

func (s *Server) handleNews(c *gin.Context) {
	force := c.Query("refresh") == "true"
	data := s.news.Get(c.Request.Context(), force)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      data,
		"timestamp": s.now().UTC(),
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.logger.Info("forced refresh requested", "remote", c.ClientIP())
	data := s.news.Get(c.Request.Context(), true)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      data,
		"message":   msgRefreshed,
		"timestamp": s.now().UTC(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.news.Status()})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.news.Metrics()})
}

func (s *Server) handleRefreshes(c *gin.Context) {
	if s.runs == nil {
		s.writeError(c, http.StatusServiceUnavailable, "refresh history disabled")
		return
	}

	filter, msg := parseFilter(c)
	if msg != "" {
		s.writeError(c, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	runs, err := s.runs.ListRuns(ctx, filter)
	if err != nil {
		s.logger.Error("list refresh runs", "error", err)
		s.writeError(c, http.StatusInternalServerError, msgInternalError)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": runs})
}

func parseFilter(c *gin.Context) (store.Filter, string) {
	var f store.Filter

	switch outcome := c.Query("outcome"); outcome {
	case "", store.OutcomeOK, store.OutcomePartial, store.OutcomeFailed:
		f.Outcome = outcome
	default:
		return f, "outcome must be one of ok, partial, failed"
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > maxHistoryLimit {
			return f, "limit must be between 1 and 500"
		}
		f.Limit = limit
	}

	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, "since must be RFC3339"
		}
		f.Since = since
	}
	return f, ""
}

func (s *Server) writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("handler panicked", "path", c.Request.URL.Path, "panic", recovered)
		s.writeError(c, http.StatusInternalServerError, msgInternalError)
	})
}

func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		if c.Request.Method == http.MethodOptions {
			s.logger.Debug("cors preflight", "path", c.Request.URL.Path, "duration", duration)
			return
		}
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", duration,
		)
	}
}

func withCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
