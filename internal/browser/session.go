// Package browser держит состояние просмотра каталога для одного клиента:
// активную вкладку, фильтры, результаты, фасеты и флаг загрузки.
//
// Каждый запрос результатов получает номер поколения. Ответ применяется,
// только если его поколение всё ещё текущее, поэтому медленный ответ на
// устаревший фильтр не перезапишет свежий результат.
package browser

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/directory-backend/internal/goroutine"
	"github.com/ignatzorin/directory-backend/internal/models"
)

// Searcher выполняет запросы результатов каталога.
type Searcher interface {
	FetchProfiles(ctx context.Context, domain models.Domain, f models.Filter) []models.Profile
	FetchGroups(ctx context.Context, f models.Filter) []models.Group
}

// Faceter загружает значения для фильтров.
type Faceter interface {
	FetchCategories(ctx context.Context, domain models.Domain) []string
	FetchLocations(ctx context.Context) []models.Location
}

// State снимок состояния сессии. Слайсы только для чтения.
type State struct {
	ActiveTab           models.Domain     `json:"active_tab"`
	SearchTerm          string            `json:"search_term"`
	SelectedCategory    *string           `json:"selected_category"`
	SelectedLocation    *uuid.UUID        `json:"selected_location"`
	Profiles            []models.Profile  `json:"profiles"`
	Groups              []models.Group    `json:"groups"`
	Loading             bool              `json:"loading"`
	AvailableCategories []string          `json:"available_categories"`
	AvailableLocations  []models.Location `json:"available_locations"`
	Generation          uint64            `json:"generation"`
}

// Filter фильтр, соответствующий состоянию.
func (s State) Filter() models.Filter {
	return models.Filter{
		SearchTerm: s.SearchTerm,
		Category:   s.SelectedCategory,
		LocationID: s.SelectedLocation,
	}
}

// Option настраивает Session.
type Option func(*Session)

// WithRunner заменяет запуск фоновых запросов.
func WithRunner(run func(fn func())) Option {
	return func(s *Session) { s.run = run }
}

// WithTab задаёт начальную вкладку.
func WithTab(domain models.Domain) Option {
	return func(s *Session) { s.state.ActiveTab = domain }
}

// Session состояние просмотра каталога одного клиента.
type Session struct {
	ctx    context.Context
	search Searcher
	facets Faceter
	run    func(fn func())

	mu       sync.Mutex
	state    State
	facetGen uint64

	// pubMu упорядочивает доставку снимков подписчикам.
	pubMu       sync.Mutex
	subscribers map[int]func(State)
	nextSub     int

	inflight sync.WaitGroup
}

// NewSession создаёт сессию. ctx ограничивает время жизни всех запросов сессии.
func NewSession(ctx context.Context, search Searcher, facets Faceter, opts ...Option) *Session {
	s := &Session{
		ctx:         ctx,
		search:      search,
		facets:      facets,
		run:         goroutine.SafeGo,
		subscribers: make(map[int]func(State)),
		state: State{
			ActiveTab:           models.DomainPeople,
			Profiles:            []models.Profile{},
			Groups:              []models.Group{},
			AvailableCategories: []string{},
			AvailableLocations:  []models.Location{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe регистрирует получателя снимков. Получатель вызывается
// последовательно и не должен вызывать методы сессии синхронно.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.pubMu.Lock()
		defer s.pubMu.Unlock()
		delete(s.subscribers, id)
	}
}

// Snapshot возвращает текущее состояние.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait блокируется до завершения всех запущенных запросов.
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Init загружает фасеты и первую страницу результатов.
func (s *Session) Init() {
	s.mu.Lock()
	s.facetGen++
	gen := s.facetGen
	domain := s.state.ActiveTab
	s.mu.Unlock()

	s.goFetch(func() {
		var (
			categories []string
			locations  []models.Location
		)
		var g errgroup.Group
		g.Go(func() error {
			categories = s.facets.FetchCategories(s.ctx, domain)
			return nil
		})
		g.Go(func() error {
			locations = s.facets.FetchLocations(s.ctx)
			return nil
		})
		_ = g.Wait()

		s.update(func(st *State) bool {
			st.AvailableLocations = locations
			if gen == s.facetGen {
				st.AvailableCategories = categories
			}
			return true
		})
	})

	s.fetch()
}

// SetTab переключает вкладку: сбрасывает категорию, перезагружает
// категории вкладки и результаты.
func (s *Session) SetTab(domain models.Domain) {
	s.mu.Lock()
	s.state.ActiveTab = domain
	s.state.SelectedCategory = nil
	s.mu.Unlock()

	s.loadCategories()
	s.fetch()
}

// SetSearchTerm меняет поисковую строку и перезапрашивает результаты.
func (s *Session) SetSearchTerm(term string) {
	s.mu.Lock()
	s.state.SearchTerm = models.NormalizeSearchTerm(term)
	s.mu.Unlock()

	s.fetch()
}

// SetCategory меняет фильтр категории. nil снимает фильтр.
func (s *Session) SetCategory(category *string) {
	s.mu.Lock()
	s.state.SelectedCategory = category
	s.mu.Unlock()

	s.fetch()
}

// SetLocation меняет фильтр локации. nil снимает фильтр.
func (s *Session) SetLocation(locationID *uuid.UUID) {
	s.mu.Lock()
	s.state.SelectedLocation = locationID
	s.mu.Unlock()

	s.fetch()
}

// Refresh перезапрашивает результаты с текущими фильтрами.
func (s *Session) Refresh() {
	s.fetch()
}

func (s *Session) loadCategories() {
	s.mu.Lock()
	s.facetGen++
	gen := s.facetGen
	domain := s.state.ActiveTab
	s.mu.Unlock()

	s.goFetch(func() {
		categories := s.facets.FetchCategories(s.ctx, domain)
		s.update(func(st *State) bool {
			if gen != s.facetGen {
				return false
			}
			st.AvailableCategories = categories
			return true
		})
	})
}

// fetch начинает новое поколение запроса результатов.
func (s *Session) fetch() {
	var (
		gen    uint64
		domain models.Domain
		filter models.Filter
	)
	s.update(func(st *State) bool {
		st.Generation++
		st.Loading = true
		gen = st.Generation
		domain = st.ActiveTab
		filter = st.Filter()
		return true
	})

	s.goFetch(func() {
		// Если поиск упал с паникой, снимаем Loading, иначе индикатор зависнет.
		applied := false
		defer func() {
			if applied {
				return
			}
			s.update(func(st *State) bool {
				if gen != st.Generation || !st.Loading {
					return false
				}
				st.Loading = false
				return true
			})
		}()

		if domain == models.DomainGroup {
			groups := s.search.FetchGroups(s.ctx, filter)
			applied = true
			s.update(func(st *State) bool {
				if gen != st.Generation {
					return false
				}
				st.Groups = groups
				st.Loading = false
				return true
			})
			return
		}

		profiles := s.search.FetchProfiles(s.ctx, domain, filter)
		applied = true
		s.update(func(st *State) bool {
			if gen != st.Generation {
				return false
			}
			st.Profiles = profiles
			st.Loading = false
			return true
		})
	})
}

func (s *Session) goFetch(fn func()) {
	s.inflight.Add(1)
	s.run(func() {
		defer s.inflight.Done()
		fn()
	})
}

// update меняет состояние под блокировкой и, если mutate вернул true,
// рассылает снимок подписчикам. Снимки доставляются в порядке изменений.
func (s *Session) update(mutate func(st *State) bool) {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.state
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	for _, fn := range s.subscribers {
		fn(snap)
	}
}
