package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter число открытых сессий каталога.
type SessionCounter interface {
	Count() int
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	store    Pinger
	cache    Pinger
	sessions SessionCounter
}

// NewHealthHandler создаёт новый health handler. cache и sessions могут быть nil.
func NewHealthHandler(store, cache Pinger, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{store: store, cache: cache, sessions: sessions}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Sessions  int               `json:"sessions"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["store"] = "healthy"
	}

	// Кэш фасетов не критичен: без него резолверы ходят в хранилище напрямую.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["facet_cache"] = "degraded: " + err.Error()
		} else {
			checks["facet_cache"] = "healthy"
		}
	}

	var sessions int
	if h.sessions != nil {
		sessions = h.sessions.Count()
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Sessions:  sessions,
	})
}
