package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/browser"
	"github.com/ignatzorin/directory-backend/internal/http/middleware"
	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/service"
	"github.com/ignatzorin/directory-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	search   *service.SearchService
	facets   *service.FacetService
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер.
func NewWSHandler(hub *ws.Hub, search *service.SearchService, facets *service.FacetService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:    hub,
		search: search,
		facets: facets,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// Handle обслуживает GET /api/ws?tab=...
func (h *WSHandler) Handle(c *gin.Context) {
	var opts []browser.Option
	if raw := c.Query("tab"); raw != "" {
		domain, err := models.ParseDomain(raw)
		if err != nil {
			_ = c.Error(err)
			return
		}
		opts = append(opts, browser.WithTab(domain))
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrader уже записал ответ клиенту.
		logger.Get().WithError(err).Warn("websocket upgrade failed")
		return
	}

	ctx := c.Request.Context()
	session := browser.NewSession(ctx, h.search, h.facets, opts...)
	client := ws.NewClient(conn, h.hub, session)
	if !h.hub.Register(client) {
		client.Close()
		return
	}

	logger.Get().WithFields(logrus.Fields{
		"remote": c.ClientIP(),
		"tab":    session.Snapshot().ActiveTab,
	}).Debug("browser session opened")

	client.Run(ctx)
}
