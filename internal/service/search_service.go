package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
	"github.com/ignatzorin/directory-backend/internal/repository/common"
)

// SearchService собирает запросы каталога из фильтров и выполняет их.
//
// Ошибка хранилища в FetchProfiles и FetchGroups логируется и превращается
// в пустой список: для вызывающего кода она неотличима от отсутствия данных.
type SearchService struct {
	store DirectoryStore
}

// NewSearchService создаёт сервис поиска по каталогу.
func NewSearchService(store DirectoryStore) *SearchService {
	return &SearchService{store: store}
}

// ProfileQuery строит запрос к профилям вкладки.
func ProfileQuery(domain models.Domain, f models.Filter) query.Query {
	return applyFilter(profilesOfDomain(domain), f)
}

// GroupQuery строит запрос к группам.
func GroupQuery(f models.Filter) query.Query {
	return applyFilter(publicGroups(), f)
}

func applyFilter(q query.Query, f models.Filter) query.Query {
	fields := FieldsFor(q.Table)

	if f.SearchTerm != "" {
		q = q.ContainsAny(f.SearchTerm, fields.Text...)
	}
	if f.Category != nil && *f.Category != "" {
		q = q.ContainsAny(*f.Category, fields.Category...)
	}
	if f.LocationID != nil {
		q = q.Eq("location_id", f.LocationID.String())
	}

	return q.Order("name").WithLimit(PageSize)
}

// FetchProfiles возвращает первую страницу профилей вкладки.
func (s *SearchService) FetchProfiles(ctx context.Context, domain models.Domain, f models.Filter) []models.Profile {
	profiles, err := s.store.SelectProfiles(ctx, ProfileQuery(domain, f))
	if err != nil {
		logFetchFailure(query.TableProfiles, domain, err)
		return []models.Profile{}
	}
	if profiles == nil {
		return []models.Profile{}
	}
	return profiles
}

// FetchGroups возвращает первую страницу групп.
func (s *SearchService) FetchGroups(ctx context.Context, f models.Filter) []models.Group {
	groups, err := s.store.SelectGroups(ctx, GroupQuery(f))
	if err != nil {
		logFetchFailure(query.TableGroups, models.DomainGroup, err)
		return []models.Group{}
	}
	if groups == nil {
		return []models.Group{}
	}
	return groups
}

// GetProfile возвращает публичный профиль по идентификатору.
func (s *SearchService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	q := publicProfiles().Eq("id", id.String()).WithLimit(1)
	rows, err := s.store.SelectProfiles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search service: get profile %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("search service: profile %s: %w", id, common.ErrNotFound)
	}
	return &rows[0], nil
}

// GetGroup возвращает публичную группу по идентификатору.
func (s *SearchService) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	q := publicGroups().Eq("id", id.String()).WithLimit(1)
	rows, err := s.store.SelectGroups(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search service: get group %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("search service: group %s: %w", id, common.ErrNotFound)
	}
	return &rows[0], nil
}

func logFetchFailure(table query.Table, domain models.Domain, err error) {
	entry := logger.Get().WithFields(logrus.Fields{
		"table":  string(table),
		"domain": domain.String(),
		"error":  err.Error(),
	})
	if errors.Is(err, context.Canceled) {
		entry.Debug("запрос каталога отменён")
		return
	}
	entry.Warn("ошибка запроса каталога, возвращаем пустой результат")
}
