package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
	"github.com/ignatzorin/directory-backend/internal/repository/common"
)

// MemoryRepository хранит каталог в памяти процесса.
// Используется в development (STORE_DRIVER=memory) и в тестах.
type MemoryRepository struct {
	mu        sync.RWMutex
	profiles  []models.Profile
	groups    []models.Group
	locations map[uuid.UUID]models.Location
	order     []uuid.UUID
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{locations: make(map[uuid.UUID]models.Location)}
}

// SelectProfiles возвращает профили по запросу с разыменованными локациями.
func (r *MemoryRepository) SelectProfiles(ctx context.Context, q query.Query) ([]models.Profile, error) {
	if err := checkQuery(ctx, q, query.TableProfiles); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := query.Apply(q, r.profiles)
	for i := range rows {
		rows[i].Location = r.resolve(rows[i].LocationID, 3)
	}
	return rows, nil
}

// SelectGroups возвращает группы по запросу. У группы разыменовывается только имя локации.
func (r *MemoryRepository) SelectGroups(ctx context.Context, q query.Query) ([]models.Group, error) {
	if err := checkQuery(ctx, q, query.TableGroups); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := query.Apply(q, r.groups)
	for i := range rows {
		rows[i].Location = r.resolve(rows[i].LocationID, 1)
	}
	return rows, nil
}

// SelectLocations возвращает локации по запросу.
func (r *MemoryRepository) SelectLocations(ctx context.Context, q query.Query) ([]models.Location, error) {
	if err := checkQuery(ctx, q, query.TableLocations); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Location, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.locations[id])
	}
	return query.Apply(q, all), nil
}

// Distinct возвращает уникальные непустые значения колонки, отсортированные по возрастанию.
func (r *MemoryRepository) Distinct(ctx context.Context, q query.Query, column string) ([]string, error) {
	q = q.NotNull(column).WithLimit(0)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []query.Record
	switch q.Table {
	case query.TableProfiles:
		for _, p := range query.Apply(q, r.profiles) {
			records = append(records, p)
		}
	case query.TableGroups:
		for _, g := range query.Apply(q, r.groups) {
			records = append(records, g)
		}
	case query.TableLocations:
		for _, id := range r.order {
			if l := r.locations[id]; q.Match(l) {
				records = append(records, l)
			}
		}
	}

	seen := make(map[string]struct{}, len(records))
	values := []string{}
	for _, rec := range records {
		v, ok := rec.Field(column)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// CreateProfile сохраняет новый профиль.
func (r *MemoryRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	for _, p := range r.profiles {
		if p.ID == profile.ID {
			return fmt.Errorf("memory repository: create profile %s: %w", profile.ID, common.ErrAlreadyExists)
		}
	}
	if profile.LocationID != nil {
		if _, ok := r.locations[*profile.LocationID]; !ok {
			return fmt.Errorf("memory repository: location %s: %w", *profile.LocationID, common.ErrNotFound)
		}
	}
	profile.CreatedAt = time.Now().UTC()

	stored := *profile
	stored.Location = nil
	r.profiles = append(r.profiles, stored)
	return nil
}

// ImportFixtures загружает фикстуры, существующие id пропускаются.
func (r *MemoryRepository) ImportFixtures(ctx context.Context, locations []models.Location, profiles []models.Profile, groups []models.Group) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, l := range locations {
		if _, ok := r.locations[l.ID]; ok {
			continue
		}
		r.locations[l.ID] = l
		r.order = append(r.order, l.ID)
		inserted++
	}

	now := time.Now().UTC()
	known := make(map[uuid.UUID]struct{}, len(r.profiles)+len(r.groups))
	for _, p := range r.profiles {
		known[p.ID] = struct{}{}
	}
	for _, g := range r.groups {
		known[g.ID] = struct{}{}
	}

	for _, p := range profiles {
		if _, ok := known[p.ID]; ok {
			continue
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.Location = nil
		r.profiles = append(r.profiles, p)
		known[p.ID] = struct{}{}
		inserted++
	}
	for _, g := range groups {
		if _, ok := known[g.ID]; ok {
			continue
		}
		if g.CreatedAt.IsZero() {
			g.CreatedAt = now
		}
		g.Location = nil
		r.groups = append(r.groups, g)
		known[g.ID] = struct{}{}
		inserted++
	}
	return inserted, nil
}

// Ping всегда успешен, пока контекст жив.
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// resolve строит цепочку локаций глубиной не более depth.
func (r *MemoryRepository) resolve(id *uuid.UUID, depth int) *models.LocationRef {
	if id == nil || depth <= 0 {
		return nil
	}
	loc, ok := r.locations[*id]
	if !ok {
		return nil
	}
	return &models.LocationRef{
		ID:     loc.ID,
		Name:   loc.Name,
		Parent: r.resolve(loc.ParentID, depth-1),
	}
}

func checkQuery(ctx context.Context, q query.Query, table query.Table) error {
	if q.Table != table {
		return fmt.Errorf("memory repository: запрос к %s вместо %s", q.Table, table)
	}
	if err := q.Validate(); err != nil {
		return err
	}
	return ctx.Err()
}
