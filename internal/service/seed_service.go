package service

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/repository/common"
)

// FixtureImporter хранилище, которое умеет загружать фикстуры.
type FixtureImporter interface {
	ImportFixtures(ctx context.Context, locations []models.Location, profiles []models.Profile, groups []models.Group) (int, error)
}

// Fixtures содержимое YAML файла с данными каталога.
type Fixtures struct {
	Locations []models.Location `yaml:"locations"`
	Profiles  []models.Profile  `yaml:"profiles"`
	Groups    []models.Group    `yaml:"groups"`
}

// SeedResult итог загрузки фикстур.
type SeedResult struct {
	Locations int `json:"locations"`
	Profiles  int `json:"profiles"`
	Groups    int `json:"groups"`
	Inserted  int `json:"inserted"`
}

// SeedService наполняет каталог данными из фикстур.
type SeedService struct {
	importer FixtureImporter
	facets   *FacetService
}

// NewSeedService создаёт новый сервис для загрузки данных.
func NewSeedService(importer FixtureImporter, facets *FacetService) *SeedService {
	return &SeedService{importer: importer, facets: facets}
}

// LoadFixtures читает и проверяет YAML файл фикстур.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed service: не удалось прочитать %s: %w", path, err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures разбирает YAML и проверяет ссылки между записями.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("seed service: некорректный YAML: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	known := make(map[string]struct{}, len(f.Locations))
	for i, l := range f.Locations {
		if l.Name == "" {
			return fmt.Errorf("seed service: локация #%d без имени", i)
		}
		if l.Type != models.LocationTypeCountry && l.Type != models.LocationTypeRegion && l.Type != models.LocationTypeCity {
			return fmt.Errorf("seed service: локация %q с неизвестным типом %q", l.Name, l.Type)
		}
		// Родитель должен быть объявлен раньше ребёнка.
		if l.ParentID != nil {
			if _, ok := known[l.ParentID.String()]; !ok {
				return fmt.Errorf("seed service: локация %q ссылается на неизвестного родителя %s", l.Name, l.ParentID)
			}
		}
		known[l.ID.String()] = struct{}{}
	}

	for i := range f.Profiles {
		p := &f.Profiles[i]
		if _, ok := models.ValidUserTypes[p.UserType]; !ok {
			return fmt.Errorf("seed service: профиль %q с неизвестным типом %q", p.Name, p.UserType)
		}
		if p.Visibility == "" {
			p.Visibility = models.VisibilityPublic
		}
		if _, ok := models.ValidVisibilities[p.Visibility]; !ok {
			return fmt.Errorf("seed service: профиль %q с неизвестной видимостью %q", p.Name, p.Visibility)
		}
		if p.LocationID != nil {
			if _, ok := known[p.LocationID.String()]; !ok {
				return fmt.Errorf("seed service: профиль %q ссылается на неизвестную локацию", p.Name)
			}
		}
	}

	for i := range f.Groups {
		g := &f.Groups[i]
		if g.Scope == "" {
			g.Scope = models.GroupScopeLocal
		}
		if _, ok := models.ValidGroupScopes[g.Scope]; !ok {
			return fmt.Errorf("seed service: группа %q с неизвестным охватом %q", g.Name, g.Scope)
		}
		if g.LocationID != nil {
			if _, ok := known[g.LocationID.String()]; !ok {
				return fmt.Errorf("seed service: группа %q ссылается на неизвестную локацию", g.Name)
			}
		}
	}
	return nil
}

// Seed загружает фикстуры в хранилище и сбрасывает кэш фасетов.
func (s *SeedService) Seed(ctx context.Context, f *Fixtures) (*SeedResult, error) {
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	inserted, err := s.importer.ImportFixtures(ctx, f.Locations, f.Profiles, f.Groups)
	if err != nil {
		return nil, fmt.Errorf("seed service: %w", err)
	}

	if s.facets != nil {
		s.facets.Invalidate(ctx)
	}

	return &SeedResult{
		Locations: len(f.Locations),
		Profiles:  len(f.Profiles),
		Groups:    len(f.Groups),
		Inserted:  inserted,
	}, nil
}

// SeedFile читает фикстуры из файла и загружает их.
func (s *SeedService) SeedFile(ctx context.Context, path string) (*SeedResult, error) {
	f, err := LoadFixtures(path)
	if err != nil {
		return nil, err
	}
	return s.Seed(ctx, f)
}
