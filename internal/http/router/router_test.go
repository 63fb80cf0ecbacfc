package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/directory-backend/internal/config"
	"github.com/ignatzorin/directory-backend/internal/http/handlers"
	"github.com/ignatzorin/directory-backend/internal/onboarding"
	"github.com/ignatzorin/directory-backend/internal/repository"
	"github.com/ignatzorin/directory-backend/internal/service"
	"github.com/ignatzorin/directory-backend/internal/ws"
)

func newTestRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryRepository()
	cache := service.NewCacheService(context.Background(), 0)
	facets := service.NewFacetService(store, cache, time.Minute)
	search := service.NewSearchService(store)

	cfg := &config.Config{
		Env:             env,
		AllowedOrigins:  []string{"*"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}
	return SetupRouter(cfg, Handlers{
		Health:     handlers.NewHealthHandler(store, cache, nil),
		Directory:  handlers.NewDirectoryHandler(search, facets),
		Onboarding: handlers.NewOnboardingHandler(onboarding.NewService(store, facets, cache, time.Hour)),
		WS:         handlers.NewWSHandler(ws.NewHub(), search, facets, cfg.AllowedOrigins),
		Seed:       handlers.NewSeedHandler(service.NewSeedService(store, facets), "missing.yaml"),
	})
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newTestRouter("test")

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/directory/profiles?tab=users", http.StatusOK},
		{http.MethodGet, "/api/directory/groups", http.StatusOK},
		{http.MethodGet, "/api/directory/categories?tab=groups", http.StatusOK},
		{http.MethodGet, "/api/directory/locations", http.StatusOK},
		{http.MethodGet, "/api/directory/profiles?tab=planets", http.StatusBadRequest},
		{http.MethodGet, "/api/profiles/not-a-uuid", http.StatusBadRequest},
		{http.MethodPost, "/api/onboarding", http.StatusCreated},
		{http.MethodPost, "/api/seed", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestSetupRouter_SeedOnlyInDevelopment(t *testing.T) {
	r := newTestRouter("development")

	req := httptest.NewRequest(http.MethodPost, "/api/seed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Маршрут есть, но файла фикстур нет.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
