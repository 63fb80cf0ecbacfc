// Package onboarding реализует пошаговую анкету создания профиля в виде
// конечного автомата: выбор ниши, форма профиля, предпросмотр, подтверждение.
package onboarding

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/validation"
)

// State шаг анкеты.
type State string

const (
	StateNicheSelect State = "niche_select"
	StateProfileForm State = "profile_form"
	StatePreview     State = "preview"
	StateConfirmed   State = "confirmed"
)

// Event переход между шагами.
type Event string

const (
	EventSelectNiche   Event = "select_niche"
	EventBack          Event = "back"
	EventSubmitProfile Event = "submit_profile"
	EventEdit          Event = "edit"
	EventConfirm       Event = "confirm"
)

type edge struct {
	from State
	to   State
}

// transitions все допустимые переходы анкеты.
var transitions = map[Event]edge{
	EventSelectNiche:   {from: StateNicheSelect, to: StateProfileForm},
	EventBack:          {from: StateProfileForm, to: StateNicheSelect},
	EventSubmitProfile: {from: StateProfileForm, to: StatePreview},
	EventEdit:          {from: StatePreview, to: StateProfileForm},
	EventConfirm:       {from: StatePreview, to: StateConfirmed},
}

// ErrInvalidTransition переход не разрешён из текущего шага.
var ErrInvalidTransition = errors.New("onboarding: недопустимый переход")

// ValidationError ошибка данных шага.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("onboarding: %s: %s", e.Field, e.Message)
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Message: err.Error()}
}

// NichePayload данные шага выбора ниши.
type NichePayload struct {
	UserType string `json:"user_type" binding:"required"`
}

// ProfilePayload данные формы профиля.
type ProfilePayload struct {
	Name         string     `json:"name" binding:"required"`
	Bio          *string    `json:"bio,omitempty"`
	BusinessType *string    `json:"business_type,omitempty"`
	PrimarySkill *string    `json:"primary_skill,omitempty"`
	Occupation   *string    `json:"occupation,omitempty"`
	HourlyRate   *float64   `json:"hourly_rate,omitempty"`
	ServiceType  *string    `json:"service_type,omitempty"`
	Visibility   string     `json:"visibility,omitempty"`
	LocationID   *uuid.UUID `json:"location_id,omitempty"`
}

// Wizard состояние анкеты одного пользователя.
type Wizard struct {
	ID        uuid.UUID       `json:"id"`
	State     State           `json:"state"`
	UserType  string          `json:"user_type,omitempty"`
	Draft     *ProfilePayload `json:"draft,omitempty"`
	ProfileID *uuid.UUID      `json:"profile_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWizard создаёт анкету на шаге выбора ниши.
func NewWizard(now time.Time) *Wizard {
	return &Wizard{
		ID:        uuid.New(),
		State:     StateNicheSelect,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Can сообщает, разрешён ли переход из текущего шага.
func (w *Wizard) Can(ev Event) bool {
	e, ok := transitions[ev]
	return ok && e.from == w.State
}

func (w *Wizard) move(ev Event) error {
	if !w.Can(ev) {
		return fmt.Errorf("%w: %s из %s", ErrInvalidTransition, ev, w.State)
	}
	w.State = transitions[ev].to
	return nil
}

// SelectNiche выбирает тип персоны и открывает форму профиля.
func (w *Wizard) SelectNiche(p NichePayload) error {
	if !w.Can(EventSelectNiche) {
		return w.move(EventSelectNiche)
	}
	userType := strings.TrimSpace(p.UserType)
	if err := validation.ValidateUserType(userType); err != nil {
		return invalid("user_type", err)
	}
	w.UserType = userType
	return w.move(EventSelectNiche)
}

// Back возвращает с формы профиля к выбору ниши. Черновик сохраняется.
func (w *Wizard) Back() error {
	return w.move(EventBack)
}

// SubmitProfile проверяет форму и переводит анкету в предпросмотр.
func (w *Wizard) SubmitProfile(p ProfilePayload) error {
	if !w.Can(EventSubmitProfile) {
		return w.move(EventSubmitProfile)
	}
	draft, err := normalize(w.UserType, p)
	if err != nil {
		return err
	}
	w.Draft = draft
	return w.move(EventSubmitProfile)
}

// Edit возвращает из предпросмотра в форму с сохранённым черновиком.
func (w *Wizard) Edit() error {
	return w.move(EventEdit)
}

// Preview собирает профиль, который будет сохранён при подтверждении.
func (w *Wizard) Preview() (models.Profile, error) {
	if w.State != StatePreview && w.State != StateConfirmed {
		return models.Profile{}, fmt.Errorf("%w: предпросмотр недоступен на шаге %s", ErrInvalidTransition, w.State)
	}
	d := w.Draft
	p := models.Profile{
		Name:        d.Name,
		Bio:         d.Bio,
		UserType:    w.UserType,
		HourlyRate:  d.HourlyRate,
		ServiceType: d.ServiceType,
		Visibility:  d.Visibility,
		LocationID:  d.LocationID,
	}
	switch validation.NicheFields[w.UserType] {
	case "business_type":
		p.BusinessType = d.BusinessType
	case "primary_skill":
		p.PrimarySkill = d.PrimarySkill
	case "occupation":
		p.Occupation = d.Occupation
	}
	if w.ProfileID != nil {
		p.ID = *w.ProfileID
	}
	return p, nil
}

// confirm фиксирует сохранённый профиль.
func (w *Wizard) confirm(profileID uuid.UUID) error {
	if err := w.move(EventConfirm); err != nil {
		return err
	}
	w.ProfileID = &profileID
	return nil
}

func normalize(userType string, p ProfilePayload) (*ProfilePayload, error) {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	out.Bio = trimmed(p.Bio)
	out.BusinessType = trimmed(p.BusinessType)
	out.PrimarySkill = trimmed(p.PrimarySkill)
	out.Occupation = trimmed(p.Occupation)
	out.ServiceType = trimmed(p.ServiceType)
	if out.Visibility == "" {
		out.Visibility = models.VisibilityPublic
	}

	if err := validation.ValidateProfileName(out.Name); err != nil {
		return nil, invalid("name", err)
	}
	if err := validation.ValidateBio(out.Bio); err != nil {
		return nil, invalid("bio", err)
	}
	if err := validation.ValidateHourlyRate(out.HourlyRate); err != nil {
		return nil, invalid("hourly_rate", err)
	}
	if err := validation.ValidateVisibility(out.Visibility); err != nil {
		return nil, invalid("visibility", err)
	}

	field := validation.NicheFields[userType]
	var value *string
	switch field {
	case "business_type":
		value = out.BusinessType
	case "primary_skill":
		value = out.PrimarySkill
	case "occupation":
		value = out.Occupation
	}
	if err := validation.ValidateNicheField(userType, value); err != nil {
		return nil, invalid(field, err)
	}
	return &out, nil
}

// trimmed обрезает пробелы; пустая строка превращается в nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
