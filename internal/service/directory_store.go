package service

import (
	"context"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
)

// DirectoryStore хранилище каталога. Реализуется repository.DirectoryRepository
// (PostgreSQL) и repository.MemoryRepository.
type DirectoryStore interface {
	SelectProfiles(ctx context.Context, q query.Query) ([]models.Profile, error)
	SelectGroups(ctx context.Context, q query.Query) ([]models.Group, error)
	SelectLocations(ctx context.Context, q query.Query) ([]models.Location, error)
	Distinct(ctx context.Context, q query.Query, column string) ([]string, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	Ping(ctx context.Context) error
}

// PageSize фиксированный размер выдачи каталога.
const PageSize = 20

// SearchFields колонки таблицы, по которым работает текстовый поиск
// и фильтр категории.
type SearchFields struct {
	Text     []string
	Category []string
}

// searchFields таблица полей поиска для каждой коллекции каталога.
var searchFields = map[query.Table]SearchFields{
	query.TableProfiles: {
		Text:     []string{"name", "bio", "business_type", "primary_skill", "occupation"},
		Category: []string{"business_type", "primary_skill", "occupation"},
	},
	query.TableGroups: {
		Text:     []string{"name", "description", "category"},
		Category: []string{"category"},
	},
}

// FieldsFor возвращает поля поиска таблицы.
func FieldsFor(table query.Table) SearchFields {
	return searchFields[table]
}

// publicProfiles базовый запрос к публичным профилям.
func publicProfiles() query.Query {
	return query.From(query.TableProfiles).Eq("visibility", models.VisibilityPublic)
}

// publicGroups базовый запрос к публичным группам.
func publicGroups() query.Query {
	return query.From(query.TableGroups).Eq("is_public", "true")
}

// profilesOfDomain ограничивает профили типами, которые показывает вкладка.
func profilesOfDomain(domain models.Domain) query.Query {
	q := publicProfiles()
	switch domain {
	case models.DomainPeople:
		q = q.In("user_type", models.CreatorUserTypes...)
	case models.DomainBusiness:
		q = q.Eq("user_type", models.UserTypeBusiness)
	}
	return q
}
