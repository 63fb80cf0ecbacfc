package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Значения фильтров, которые клиент присылает вместо "фильтр не задан".
const (
	SentinelAllCategories  = "all_categories"
	SentinelAllLocations   = "all_locations"
	SentinelDefaultCountry = "default_country"
)

// Filter состояние фильтров каталога. Nil означает отсутствие фильтра.
type Filter struct {
	SearchTerm string     `json:"search_term"`
	Category   *string    `json:"category,omitempty"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
}

// ParseCategory переводит значение из UI в необязательную категорию.
func ParseCategory(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" || v == SentinelAllCategories {
		return nil
	}
	return &v
}

// ParseLocation переводит значение из UI в необязательный идентификатор локации.
func ParseLocation(raw string) (*uuid.UUID, error) {
	v := strings.TrimSpace(raw)
	if v == "" || v == SentinelAllLocations || v == SentinelDefaultCountry {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("неверный идентификатор локации %q: %w", v, err)
	}
	return &id, nil
}

// NormalizeSearchTerm убирает пробелы по краям поискового запроса.
func NormalizeSearchTerm(raw string) string {
	return strings.TrimSpace(raw)
}

// ParseFilter собирает Filter из сырых значений UI.
func ParseFilter(searchTerm, category, location string) (Filter, error) {
	locationID, err := ParseLocation(location)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		SearchTerm: NormalizeSearchTerm(searchTerm),
		Category:   ParseCategory(category),
		LocationID: locationID,
	}, nil
}
