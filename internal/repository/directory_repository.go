package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
	"github.com/ignatzorin/directory-backend/internal/repository/common"
)

// DirectoryRepository отвечает за таблицы profiles, groups и locations.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository создаёт экземпляр репозитория.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// Профиль разыменовывает локацию на три уровня: город -> регион -> страна.
const profileSelect = `
	SELECT p.id, p.name, p.bio, p.user_type, p.business_type, p.primary_skill, p.occupation,
		p.hourly_rate, p.service_type, p.visibility, p.location_id, p.created_at,
		l0.name AS location_name, l0.parent_id AS location_parent_id,
		l1.name AS parent_name, l1.parent_id AS parent_parent_id,
		l2.name AS grandparent_name
	FROM profiles p
	LEFT JOIN locations l0 ON l0.id = p.location_id
	LEFT JOIN locations l1 ON l1.id = l0.parent_id
	LEFT JOIN locations l2 ON l2.id = l1.parent_id`

const groupSelect = `
	SELECT g.id, g.name, g.description, g.category, g.member_count, g.scope, g.is_public,
		g.location_id, g.created_at,
		l0.name AS location_name
	FROM groups g
	LEFT JOIN locations l0 ON l0.id = g.location_id`

const locationSelect = `SELECT loc.id, loc.name, loc.type, loc.parent_id FROM locations loc`

var tableAliases = map[query.Table]string{
	query.TableProfiles:  "p",
	query.TableGroups:    "g",
	query.TableLocations: "loc",
}

type profileRow struct {
	models.Profile
	LocationName     sql.NullString `db:"location_name"`
	LocationParentID *uuid.UUID     `db:"location_parent_id"`
	ParentName       sql.NullString `db:"parent_name"`
	ParentParentID   *uuid.UUID     `db:"parent_parent_id"`
	GrandparentName  sql.NullString `db:"grandparent_name"`
}

type groupRow struct {
	models.Group
	LocationName sql.NullString `db:"location_name"`
}

// SelectProfiles возвращает профили по запросу.
func (r *DirectoryRepository) SelectProfiles(ctx context.Context, q query.Query) ([]models.Profile, error) {
	stmt, args, err := build(profileSelect, query.TableProfiles, q)
	if err != nil {
		return nil, err
	}

	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("directory repository: select profiles %w", err)
	}

	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		p := row.Profile
		p.Location = row.locationRef()
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// SelectGroups возвращает группы по запросу.
func (r *DirectoryRepository) SelectGroups(ctx context.Context, q query.Query) ([]models.Group, error) {
	stmt, args, err := build(groupSelect, query.TableGroups, q)
	if err != nil {
		return nil, err
	}

	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("directory repository: select groups %w", err)
	}

	groups := make([]models.Group, 0, len(rows))
	for _, row := range rows {
		g := row.Group
		if g.LocationID != nil && row.LocationName.Valid {
			g.Location = &models.LocationRef{ID: *g.LocationID, Name: row.LocationName.String}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// SelectLocations возвращает локации по запросу.
func (r *DirectoryRepository) SelectLocations(ctx context.Context, q query.Query) ([]models.Location, error) {
	stmt, args, err := build(locationSelect, query.TableLocations, q)
	if err != nil {
		return nil, err
	}

	locations := []models.Location{}
	if err := r.db.SelectContext(ctx, &locations, stmt, args...); err != nil {
		return nil, fmt.Errorf("directory repository: select locations %w", err)
	}
	return locations, nil
}

// Distinct возвращает уникальные непустые значения колонки среди строк запроса.
func (r *DirectoryRepository) Distinct(ctx context.Context, q query.Query, column string) ([]string, error) {
	q = q.NotNull(column).WithLimit(0)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	alias := tableAliases[q.Table]
	b := newSQLBuilder(alias)
	fmt.Fprintf(&b.sb, "SELECT DISTINCT %s.%s::text AS value FROM %s %s", alias, column, q.Table, alias)
	b.where(q)
	b.sb.WriteString(" ORDER BY value")

	values := []string{}
	if err := r.db.SelectContext(ctx, &values, b.String(), b.args...); err != nil {
		return nil, fmt.Errorf("directory repository: distinct %s.%s %w", q.Table, column, err)
	}
	return values, nil
}

// CreateProfile сохраняет новый профиль.
func (r *DirectoryRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	stmt := `
		INSERT INTO profiles (id, name, bio, user_type, business_type, primary_skill, occupation, hourly_rate, service_type, visibility, location_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, stmt,
		profile.ID,
		profile.Name,
		profile.Bio,
		profile.UserType,
		profile.BusinessType,
		profile.PrimarySkill,
		profile.Occupation,
		profile.HourlyRate,
		profile.ServiceType,
		profile.Visibility,
		profile.LocationID,
	).Scan(&profile.CreatedAt); err != nil {
		return fmt.Errorf("directory repository: create profile %w", err)
	}

	return nil
}

// ImportFixtures вставляет фикстуры одной транзакцией, существующие id пропускаются.
func (r *DirectoryRepository) ImportFixtures(ctx context.Context, locations []models.Location, profiles []models.Profile, groups []models.Group) (int, error) {
	inserted := 0
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		locIns := common.NewBatchInserter(tx, `INSERT INTO locations (id, name, type, parent_id)`, `ON CONFLICT (id) DO NOTHING`, 4, 100)
		for _, l := range locations {
			if err := locIns.Add(ctx, l.ID, l.Name, l.Type, l.ParentID); err != nil {
				return err
			}
		}
		if err := locIns.Flush(ctx); err != nil {
			return err
		}

		profIns := common.NewBatchInserter(tx,
			`INSERT INTO profiles (id, name, bio, user_type, business_type, primary_skill, occupation, hourly_rate, service_type, visibility, location_id)`,
			`ON CONFLICT (id) DO NOTHING`, 11, 100)
		for _, p := range profiles {
			if err := profIns.Add(ctx, p.ID, p.Name, p.Bio, p.UserType, p.BusinessType, p.PrimarySkill, p.Occupation, p.HourlyRate, p.ServiceType, p.Visibility, p.LocationID); err != nil {
				return err
			}
		}
		if err := profIns.Flush(ctx); err != nil {
			return err
		}

		groupIns := common.NewBatchInserter(tx,
			`INSERT INTO groups (id, name, description, category, member_count, scope, is_public, location_id)`,
			`ON CONFLICT (id) DO NOTHING`, 8, 100)
		for _, g := range groups {
			if err := groupIns.Add(ctx, g.ID, g.Name, g.Description, g.Category, g.MemberCount, g.Scope, g.IsPublic, g.LocationID); err != nil {
				return err
			}
		}
		if err := groupIns.Flush(ctx); err != nil {
			return err
		}

		inserted = locIns.Inserted() + profIns.Inserted() + groupIns.Inserted()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("directory repository: import fixtures %w", err)
	}
	return inserted, nil
}

// Ping проверяет доступность базы.
func (r *DirectoryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// build собирает SELECT для таблицы из базового запроса и условий.
func build(base string, table query.Table, q query.Query) (string, []interface{}, error) {
	if q.Table != table {
		return "", nil, fmt.Errorf("directory repository: запрос к %s вместо %s", q.Table, table)
	}
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	b := newSQLBuilder(tableAliases[table])
	b.sb.WriteString(base)
	b.where(q)
	b.orderAndLimit(q)
	return b.String(), b.args, nil
}

func (row profileRow) locationRef() *models.LocationRef {
	if row.LocationID == nil || !row.LocationName.Valid {
		return nil
	}
	ref := &models.LocationRef{ID: *row.LocationID, Name: row.LocationName.String}
	if row.LocationParentID != nil && row.ParentName.Valid {
		ref.Parent = &models.LocationRef{ID: *row.LocationParentID, Name: row.ParentName.String}
		if row.ParentParentID != nil && row.GrandparentName.Valid {
			ref.Parent.Parent = &models.LocationRef{ID: *row.ParentParentID, Name: row.GrandparentName.String}
		}
	}
	return ref
}
