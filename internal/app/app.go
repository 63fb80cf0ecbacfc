// Package app собирает хранилище и кэш каталога по конфигурации.
// Используется сервером и CLI.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/cache"
	"github.com/ignatzorin/directory-backend/internal/config"
	"github.com/ignatzorin/directory-backend/internal/db"
	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/repository"
	"github.com/ignatzorin/directory-backend/internal/service"
	"github.com/ignatzorin/directory-backend/migrations"
)

// Store хранилище каталога, в которое можно загрузить фикстуры.
type Store interface {
	service.DirectoryStore
	service.FixtureImporter
}

// MigrationsFS возвращает каталог миграций с диска, если он есть,
// иначе встроенные в бинарь миграции.
func MigrationsFS(path string) fs.FS {
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return os.DirFS(path)
		}
	}
	return migrations.FS
}

// OpenStore открывает хранилище. Для postgres применяет миграции,
// memory хранилище сразу наполняется фикстурами из cfg.SeedFile.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store := repository.NewMemoryRepository()
		if cfg.SeedFile != "" {
			result, err := service.NewSeedService(store, nil).SeedFile(ctx, cfg.SeedFile)
			if err != nil {
				return nil, nil, fmt.Errorf("app: загрузка фикстур: %w", err)
			}
			logger.Get().WithFields(logrus.Fields{
				"file":     cfg.SeedFile,
				"inserted": result.Inserted,
			}).Info("memory store seeded")
		}
		return store, func() {}, nil

	case config.StoreDriverPostgres:
		conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		applied, err := db.RunMigrations(ctx, conn, MigrationsFS(cfg.MigrationsPath))
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("app: миграции: %w", err)
		}
		logger.Get().WithField("applied", applied).Info("migrations applied")

		closer := func() {
			if err := conn.Close(); err != nil {
				logger.Get().WithError(err).Warn("ошибка закрытия базы")
			}
		}
		return repository.NewDirectoryRepository(conn), closer, nil
	}
	return nil, nil, fmt.Errorf("app: неизвестный драйвер хранилища %q", cfg.StoreDriver)
}

// OpenFacetCache возвращает Redis кэш, если задан REDIS_ADDR и Redis отвечает,
// иначе fallback.
func OpenFacetCache(ctx context.Context, cfg *config.Config, fallback service.FacetCache) (service.FacetCache, func()) {
	if cfg.RedisAddr == "" {
		return fallback, func() {}
	}

	redisCache := cache.NewRedisCache(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), "directory")
	if err := redisCache.Ping(ctx); err != nil {
		logger.Get().WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis недоступен, кэш фасетов в памяти")
		_ = redisCache.Close()
		return fallback, func() {}
	}

	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.Get().WithError(err).Warn("ошибка закрытия redis")
		}
	}
}
