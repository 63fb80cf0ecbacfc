package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/app"
	"github.com/ignatzorin/directory-backend/internal/config"
	httpHandlers "github.com/ignatzorin/directory-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/directory-backend/internal/http/router"
	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/onboarding"
	"github.com/ignatzorin/directory-backend/internal/service"
	"github.com/ignatzorin/directory-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}
	lg := logger.Get()

	// Хранилище каталога.
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		lg.WithError(err).Fatal("main: хранилище недоступно")
	}
	defer closeStore()

	// Кэши: анкеты всегда в памяти, фасеты в Redis, если он настроен.
	memCache := service.NewCacheService(ctx, time.Minute)
	facetCache, closeCache := app.OpenFacetCache(ctx, cfg, memCache)
	defer closeCache()

	// Сервисы.
	facetService := service.NewFacetService(store, facetCache, cfg.FacetCacheTTL)
	searchService := service.NewSearchService(store)
	seedService := service.NewSeedService(store, facetService)
	wizardService := onboarding.NewService(store, facetService, memCache, cfg.WizardTTL)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run(ctx)

	// HTTP хэндлеры.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Health:     httpHandlers.NewHealthHandler(store, facetCache, hub),
		Directory:  httpHandlers.NewDirectoryHandler(searchService, facetService),
		Onboarding: httpHandlers.NewOnboardingHandler(wizardService),
		WS:         httpHandlers.NewWSHandler(hub, searchService, facetService, cfg.AllowedOrigins),
		Seed:       httpHandlers.NewSeedHandler(seedService, cfg.SeedFile),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	lg.WithFields(logrus.Fields{
		"port":  cfg.HTTPPort,
		"env":   cfg.Env,
		"store": cfg.StoreDriver,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.WithError(err).Fatal("main: сервер завершился с ошибкой")
	}
}
