package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/directory-backend/internal/models"
)

// FacetCache кэш фасетов каталога. Значения хранятся в JSON,
// поэтому реализацию можно заменить на Redis без изменений в сервисах.
type FacetCache interface {
	Load(ctx context.Context, key string, dst interface{}) (bool, error)
	Store(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

// Ключи кэша фасетов.
const (
	FacetKeyPrefix      = "facets:"
	CategoriesKeyPrefix = FacetKeyPrefix + "categories:"
	LocationsKey        = FacetKeyPrefix + "locations"
)

// CategoriesCacheKey ключ кэша категорий для вкладки.
func CategoriesCacheKey(domain models.Domain) string {
	return CategoriesKeyPrefix + domain.String()
}

// CacheService in-memory кэш с TTL и инвалидацией по префиксу.
// Хранит фасеты (FacetCache) и черновики онбординга.
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

// Нулевой expiresAt означает запись без срока жизни.
type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewCacheService создаёт кэш. Фоновая очистка останавливается вместе с ctx.
func NewCacheService(ctx context.Context, cleanupEvery time.Duration) *CacheService {
	cs := &CacheService{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
	}

	if cleanupEvery > 0 {
		go cs.cleanup(ctx, cleanupEvery)
	}

	return cs
}

// Get возвращает значение из кэша.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, exists := cs.cache[key]
	if !exists {
		return nil, false
	}

	// Протухшие записи удаляет cleanup
	if entry.expired(cs.now()) {
		return nil, false
	}

	return entry.data, true
}

// Set сохраняет значение с TTL. ttl == 0 хранит запись без срока, как SET в Redis.
func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entry := &cacheEntry{data: value}
	if ttl != 0 {
		entry.expiresAt = cs.now().Add(ttl)
	}
	cs.cache[key] = entry
}

// InvalidateByPrefix удаляет все ключи с префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
		}
	}
}

// Load читает JSON значение в dst.
func (cs *CacheService) Load(_ context.Context, key string, dst interface{}) (bool, error) {
	v, ok := cs.Get(key)
	if !ok {
		return false, nil
	}
	raw, ok := v.([]byte)
	if !ok {
		return false, fmt.Errorf("cache service: ключ %s хранит не JSON", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache service: decode %s: %w", key, err)
	}
	return true, nil
}

// Store сохраняет значение в JSON.
func (cs *CacheService) Store(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache service: encode %s: %w", key, err)
	}
	cs.Set(key, raw, ttl)
	return nil
}

// InvalidatePrefix реализует FacetCache.
func (cs *CacheService) InvalidatePrefix(_ context.Context, prefix string) error {
	cs.InvalidateByPrefix(prefix)
	return nil
}

// Ping реализует FacetCache.
func (cs *CacheService) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len количество записей, включая протухшие.
func (cs *CacheService) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.cache)
}

// cleanup периодически удаляет протухшие записи.
func (cs *CacheService) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cs.removeExpired()
		}
	}
}

func (cs *CacheService) removeExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	for key, entry := range cs.cache {
		if entry.expired(now) {
			delete(cs.cache, key)
		}
	}
}
