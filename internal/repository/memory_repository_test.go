package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
	"github.com/ignatzorin/directory-backend/internal/repository/common"
)

func strPtr(s string) *string { return &s }

func seededMemory(t *testing.T) (*MemoryRepository, uuid.UUID) {
	t.Helper()

	country := uuid.New()
	region := uuid.New()
	city := uuid.New()

	repo := NewMemoryRepository()
	_, err := repo.ImportFixtures(context.Background(),
		[]models.Location{
			{ID: country, Name: "Kenya", Type: models.LocationTypeCountry},
			{ID: region, Name: "Nairobi County", Type: models.LocationTypeRegion, ParentID: &country},
			{ID: city, Name: "Nairobi", Type: models.LocationTypeCity, ParentID: &region},
		},
		[]models.Profile{
			{ID: uuid.New(), Name: "Wanjiru", UserType: models.UserTypeFreelancer, PrimarySkill: strPtr("Design"), Visibility: models.VisibilityPublic, LocationID: &city},
			{ID: uuid.New(), Name: "Otieno", UserType: models.UserTypeOccupationProvider, Occupation: strPtr("Plumbing"), Visibility: models.VisibilityPublic},
			{ID: uuid.New(), Name: "Hidden", UserType: models.UserTypeFreelancer, PrimarySkill: strPtr("Design"), Visibility: models.VisibilityPrivate},
		},
		[]models.Group{
			{ID: uuid.New(), Name: "Nairobi Makers", Category: strPtr("Crafts"), Scope: models.GroupScopeLocal, IsPublic: true, LocationID: &city},
		},
	)
	require.NoError(t, err)
	return repo, city
}

func TestMemoryRepository_ResolvesLocationChain(t *testing.T) {
	repo, city := seededMemory(t)

	profiles, err := repo.SelectProfiles(context.Background(),
		query.From(query.TableProfiles).Eq("location_id", city.String()))
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	loc := profiles[0].Location
	require.NotNil(t, loc)
	assert.Equal(t, "Nairobi", loc.Name)
	require.NotNil(t, loc.Parent)
	assert.Equal(t, "Nairobi County", loc.Parent.Name)
	require.NotNil(t, loc.Parent.Parent)
	assert.Equal(t, "Kenya", loc.Parent.Parent.Name)

	groups, err := repo.SelectGroups(context.Background(), query.From(query.TableGroups))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].Location)
	assert.Equal(t, "Nairobi", groups[0].Location.Name)
	assert.Nil(t, groups[0].Location.Parent)
}

func TestMemoryRepository_Distinct(t *testing.T) {
	repo, _ := seededMemory(t)

	values, err := repo.Distinct(context.Background(),
		query.From(query.TableProfiles).Eq("visibility", models.VisibilityPublic), "primary_skill")
	require.NoError(t, err)
	assert.Equal(t, []string{"Design"}, values)

	none, err := repo.Distinct(context.Background(),
		query.From(query.TableProfiles).Eq("user_type", models.UserTypeBusiness), "business_type")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryRepository_RejectsWrongTable(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.SelectProfiles(context.Background(), query.From(query.TableGroups))
	assert.Error(t, err)
}

func TestMemoryRepository_CreateProfile(t *testing.T) {
	repo, city := seededMemory(t)
	ctx := context.Background()

	p := &models.Profile{Name: "New", UserType: models.UserTypeBusiness, Visibility: models.VisibilityPublic, LocationID: &city}
	require.NoError(t, repo.CreateProfile(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	err := repo.CreateProfile(ctx, p)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	missing := uuid.New()
	err = repo.CreateProfile(ctx, &models.Profile{Name: "X", LocationID: &missing})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryRepository_ImportFixturesIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	loc := models.Location{ID: uuid.New(), Name: "Ghana", Type: models.LocationTypeCountry}

	n, err := repo.ImportFixtures(ctx, []models.Location{loc}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.ImportFixtures(ctx, []models.Location{loc}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
