package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// LocationRef разыменованная ссылка на локацию с цепочкой родителей.
type LocationRef struct {
	ID     uuid.UUID    `json:"id"`
	Name   string       `json:"name"`
	Parent *LocationRef `json:"parent,omitempty"`
}

// Location описывает узел дерева локаций.
type Location struct {
	ID       uuid.UUID  `db:"id" json:"id" yaml:"id"`
	Name     string     `db:"name" json:"name" yaml:"name"`
	Type     string     `db:"type" json:"type" yaml:"type"`
	ParentID *uuid.UUID `db:"parent_id" json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// Profile описывает публичную карточку персоны в каталоге.
type Profile struct {
	ID           uuid.UUID    `db:"id" json:"id" yaml:"id"`
	Name         string       `db:"name" json:"name" yaml:"name"`
	Bio          *string      `db:"bio" json:"bio,omitempty" yaml:"bio,omitempty"`
	UserType     string       `db:"user_type" json:"user_type" yaml:"user_type"`
	BusinessType *string      `db:"business_type" json:"business_type,omitempty" yaml:"business_type,omitempty"`
	PrimarySkill *string      `db:"primary_skill" json:"primary_skill,omitempty" yaml:"primary_skill,omitempty"`
	Occupation   *string      `db:"occupation" json:"occupation,omitempty" yaml:"occupation,omitempty"`
	HourlyRate   *float64     `db:"hourly_rate" json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"`
	ServiceType  *string      `db:"service_type" json:"service_type,omitempty" yaml:"service_type,omitempty"`
	Visibility   string       `db:"visibility" json:"visibility" yaml:"visibility"`
	LocationID   *uuid.UUID   `db:"location_id" json:"location_id,omitempty" yaml:"location_id,omitempty"`
	Location     *LocationRef `db:"-" json:"location,omitempty" yaml:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at" yaml:"created_at,omitempty"`
}

// Group описывает тематическую или локальную группу.
type Group struct {
	ID          uuid.UUID    `db:"id" json:"id" yaml:"id"`
	Name        string       `db:"name" json:"name" yaml:"name"`
	Description *string      `db:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Category    *string      `db:"category" json:"category,omitempty" yaml:"category,omitempty"`
	MemberCount int          `db:"member_count" json:"member_count" yaml:"member_count"`
	Scope       string       `db:"scope" json:"scope" yaml:"scope"`
	IsPublic    bool         `db:"is_public" json:"is_public" yaml:"is_public"`
	LocationID  *uuid.UUID   `db:"location_id" json:"location_id,omitempty" yaml:"location_id,omitempty"`
	Location    *LocationRef `db:"-" json:"location,omitempty" yaml:"-"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at" yaml:"created_at,omitempty"`
}

// Field возвращает значение колонки профиля в строковом виде.
// Второй результат false означает NULL или неизвестную колонку.
func (p Profile) Field(column string) (string, bool) {
	switch column {
	case "id":
		return p.ID.String(), true
	case "name":
		return p.Name, true
	case "bio":
		return deref(p.Bio)
	case "user_type":
		return p.UserType, true
	case "business_type":
		return deref(p.BusinessType)
	case "primary_skill":
		return deref(p.PrimarySkill)
	case "occupation":
		return deref(p.Occupation)
	case "service_type":
		return deref(p.ServiceType)
	case "hourly_rate":
		if p.HourlyRate == nil {
			return "", false
		}
		return strconv.FormatFloat(*p.HourlyRate, 'f', -1, 64), true
	case "visibility":
		return p.Visibility, true
	case "location_id":
		return derefID(p.LocationID)
	}
	return "", false
}

// Field возвращает значение колонки группы в строковом виде.
func (g Group) Field(column string) (string, bool) {
	switch column {
	case "id":
		return g.ID.String(), true
	case "name":
		return g.Name, true
	case "description":
		return deref(g.Description)
	case "category":
		return deref(g.Category)
	case "member_count":
		return strconv.Itoa(g.MemberCount), true
	case "scope":
		return g.Scope, true
	case "is_public":
		return strconv.FormatBool(g.IsPublic), true
	case "location_id":
		return derefID(g.LocationID)
	}
	return "", false
}

// Field возвращает значение колонки локации в строковом виде.
func (l Location) Field(column string) (string, bool) {
	switch column {
	case "id":
		return l.ID.String(), true
	case "name":
		return l.Name, true
	case "type":
		return l.Type, true
	case "parent_id":
		return derefID(l.ParentID)
	}
	return "", false
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func derefID(id *uuid.UUID) (string, bool) {
	if id == nil {
		return "", false
	}
	return id.String(), true
}
