package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/models"
)

// ProfileCreator сохраняет подтверждённый профиль.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
}

// CategoryInvalidator сбрасывает кэш категорий после появления нового профиля.
type CategoryInvalidator interface {
	InvalidateCategories(ctx context.Context)
}

// WizardStore хранилище анкет с TTL.
type WizardStore interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// ErrWizardNotFound анкета не найдена или истекла.
var ErrWizardNotFound = errors.New("onboarding: анкета не найдена")

const wizardKeyPrefix = "onboarding:"

// Service управляет анкетами. Анкеты живут в WizardStore не дольше ttl
// с момента последнего изменения.
type Service struct {
	profiles ProfileCreator
	facets   CategoryInvalidator
	store    WizardStore
	ttl      time.Duration
	now      func() time.Time

	mu sync.Mutex
}

// NewService создаёт сервис анкет.
func NewService(profiles ProfileCreator, facets CategoryInvalidator, store WizardStore, ttl time.Duration) *Service {
	return &Service{
		profiles: profiles,
		facets:   facets,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start создаёт новую анкету.
func (s *Service) Start() Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := NewWizard(s.now().UTC())
	s.save(w)
	return *w
}

// Get возвращает анкету.
func (s *Service) Get(id uuid.UUID) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(id)
	if err != nil {
		return Wizard{}, err
	}
	return *w, nil
}

// SelectNiche выполняет шаг выбора ниши.
func (s *Service) SelectNiche(id uuid.UUID, p NichePayload) (Wizard, error) {
	return s.apply(id, func(w *Wizard) error { return w.SelectNiche(p) })
}

// Back возвращает к выбору ниши.
func (s *Service) Back(id uuid.UUID) (Wizard, error) {
	return s.apply(id, (*Wizard).Back)
}

// SubmitProfile отправляет форму профиля.
func (s *Service) SubmitProfile(id uuid.UUID, p ProfilePayload) (Wizard, error) {
	return s.apply(id, func(w *Wizard) error { return w.SubmitProfile(p) })
}

// Edit возвращает из предпросмотра к форме.
func (s *Service) Edit(id uuid.UUID) (Wizard, error) {
	return s.apply(id, (*Wizard).Edit)
}

// Preview возвращает профиль, который будет создан.
func (s *Service) Preview(id uuid.UUID) (models.Profile, error) {
	w, err := s.Get(id)
	if err != nil {
		return models.Profile{}, err
	}
	return w.Preview()
}

// Confirm сохраняет профиль и завершает анкету. При ошибке хранилища
// анкета остаётся на шаге предпросмотра.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*models.Profile, Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(id)
	if err != nil {
		return nil, Wizard{}, err
	}
	if !w.Can(EventConfirm) {
		return nil, *w, w.move(EventConfirm)
	}

	profile, err := w.Preview()
	if err != nil {
		return nil, *w, err
	}
	if err := s.profiles.CreateProfile(ctx, &profile); err != nil {
		return nil, *w, fmt.Errorf("onboarding: сохранение профиля: %w", err)
	}
	if err := w.confirm(profile.ID); err != nil {
		return nil, *w, err
	}
	w.UpdatedAt = s.now().UTC()
	s.save(w)

	if s.facets != nil {
		s.facets.InvalidateCategories(ctx)
	}

	logger.Get().WithFields(logrus.Fields{
		"wizard_id":  w.ID.String(),
		"profile_id": profile.ID.String(),
		"user_type":  profile.UserType,
	}).Info("профиль создан через анкету")

	return &profile, *w, nil
}

func (s *Service) apply(id uuid.UUID, step func(*Wizard) error) (Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(id)
	if err != nil {
		return Wizard{}, err
	}
	if err := step(w); err != nil {
		return *w, err
	}
	w.UpdatedAt = s.now().UTC()
	s.save(w)
	return *w, nil
}

// load возвращает копию анкеты, чтобы неудачный шаг не менял сохранённую.
func (s *Service) load(id uuid.UUID) (*Wizard, error) {
	v, ok := s.store.Get(wizardKeyPrefix + id.String())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWizardNotFound, id)
	}
	stored, ok := v.(Wizard)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWizardNotFound, id)
	}
	w := stored
	if stored.Draft != nil {
		d := *stored.Draft
		w.Draft = &d
	}
	return &w, nil
}

func (s *Service) save(w *Wizard) {
	s.store.Set(wizardKeyPrefix+w.ID.String(), *w, s.ttl)
}
