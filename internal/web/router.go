package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phaseboard/timeline/internal/access"
)

// RouterOption customizes NewRouter.
type RouterOption func(*gin.Engine)

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) RouterOption {
	return func(r *gin.Engine) {
		r.GET("/metrics", gin.WrapH(h))
	}
}

// WithRequestLog logs one line per request.
func WithRequestLog(logger *slog.Logger) RouterOption {
	return func(r *gin.Engine) {
		r.Use(requestLogger(logger))
	}
}

// NewRouter wires the phase routes. Route shapes follow the page layout:
// list views render into the content pane, the rest are fragments.
func NewRouter(h *Handlers, caps Capabilities, opts ...RouterOption) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	for _, opt := range opts {
		opt(r)
	}

	view := caps.RequiresPermission(access.ViewPhase)
	add := caps.RequiresPermission(access.AddPhase)
	change := caps.RequiresPermission(access.ChangePhase)
	del := caps.RequiresPermission(access.DeletePhase)
	refresh := caps.SignalsRefresh()

	r.GET("/", h.Base)
	r.GET("/month/:year/:month", h.Month)
	r.GET("/project/list/:year/:month", view, h.ProjectList)
	r.POST("/project/create", add, refresh, h.CreateProject)
	r.GET("/list/:id/:year/:month", view, h.PhaseList)

	phase := r.Group("/phase")
	{
		phase.POST("/create", add, caps.RendersPartial("create"), refresh, h.CreatePhase)
		phase.GET("/:id", view, caps.RendersPartial("detail"), h.Detail)
		phase.POST("/:id/update", change, caps.RendersPartial("update"), refresh, h.Update)
		phase.POST("/:id/delete", del, caps.RendersPartial("delete"), refresh, h.Delete)
		phase.POST("/:id/move/up", change, caps.RendersPartial("move"), refresh, h.MoveUp)
		phase.POST("/:id/move/down", change, caps.RendersPartial("move"), refresh, h.MoveDown)
	}
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Error())
			logger.WarnContext(c.Request.Context(), "http_request", attrs...)
			return
		}
		logger.InfoContext(c.Request.Context(), "http_request", attrs...)
	}
}
