package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
)

// FacetService вычисляет списки категорий и стран для фильтров каталога.
// Ошибки хранилища не пробрасываются: фасет деградирует до пустого списка.
type FacetService struct {
	store DirectoryStore
	cache FacetCache
	ttl   time.Duration

	// version растёт при каждом сбросе кэша. Результат, прочитанный до сброса,
	// в кэш не записывается.
	mu      sync.Mutex
	version uint64
}

// NewFacetService создаёт сервис. cache может быть nil, тогда кэширования нет.
func NewFacetService(store DirectoryStore, cache FacetCache, ttl time.Duration) *FacetService {
	return &FacetService{store: store, cache: cache, ttl: ttl}
}

type facetSource struct {
	q      query.Query
	column string
}

func categorySources(domain models.Domain) []facetSource {
	switch domain {
	case models.DomainGroup:
		return []facetSource{{q: publicGroups(), column: "category"}}
	case models.DomainBusiness:
		return []facetSource{{q: profilesOfDomain(domain), column: "business_type"}}
	default:
		q := profilesOfDomain(models.DomainPeople)
		return []facetSource{
			{q: q, column: "primary_skill"},
			{q: q, column: "occupation"},
		}
	}
}

// FetchCategories возвращает отсортированный список уникальных категорий вкладки.
func (s *FacetService) FetchCategories(ctx context.Context, domain models.Domain) []string {
	key := CategoriesCacheKey(domain)
	var cached []string
	if s.load(ctx, key, &cached) {
		return cached
	}

	version := s.currentVersion()
	sources := categorySources(domain)
	columns := make([][]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			values, err := s.store.Distinct(gctx, src.q, src.column)
			if err != nil {
				return err
			}
			columns[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Get().WithFields(logrus.Fields{
			"domain": domain.String(),
			"error":  err.Error(),
		}).Warn("не удалось загрузить категории каталога")
		return []string{}
	}

	categories := MergeCategories(columns...)
	s.save(ctx, key, categories, version)
	return categories
}

// FetchLocations возвращает страны, отсортированные по имени.
func (s *FacetService) FetchLocations(ctx context.Context) []models.Location {
	var cached []models.Location
	if s.load(ctx, LocationsKey, &cached) {
		return cached
	}

	version := s.currentVersion()
	q := query.From(query.TableLocations).
		Eq("type", models.LocationTypeCountry).
		Order("name")

	locations, err := s.store.SelectLocations(ctx, q)
	if err != nil {
		logger.Get().WithFields(logrus.Fields{
			"table": string(query.TableLocations),
			"error": err.Error(),
		}).Warn("не удалось загрузить локации каталога")
		return []models.Location{}
	}
	if locations == nil {
		locations = []models.Location{}
	}

	s.save(ctx, LocationsKey, locations, version)
	return locations
}

// InvalidateCategories сбрасывает кэш категорий всех вкладок.
func (s *FacetService) InvalidateCategories(ctx context.Context) {
	s.invalidate(ctx, CategoriesKeyPrefix)
}

// Invalidate сбрасывает весь кэш фасетов.
func (s *FacetService) Invalidate(ctx context.Context) {
	s.invalidate(ctx, FacetKeyPrefix)
}

func (s *FacetService) invalidate(ctx context.Context, prefix string) {
	if s.cache == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
		logger.Get().WithError(err).WithField("prefix", prefix).Warn("не удалось сбросить кэш фасетов")
	}
}

func (s *FacetService) load(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Load(ctx, key, dst)
	if err != nil {
		logger.Get().WithError(err).WithField("key", key).Warn("ошибка чтения кэша фасетов")
		return false
	}
	return found
}

func (s *FacetService) currentVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// save записывает значение, только если кэш не сбрасывали после чтения из хранилища.
func (s *FacetService) save(ctx context.Context, key string, value interface{}, version uint64) {
	if s.cache == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return
	}
	if err := s.cache.Store(ctx, key, value, s.ttl); err != nil {
		logger.Get().WithError(err).WithField("key", key).Warn("ошибка записи кэша фасетов")
	}
}

// MergeCategories объединяет списки значений, убирает пустые строки и дубликаты
// и сортирует результат.
func MergeCategories(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, v := range list {
			if strings.TrimSpace(v) == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
