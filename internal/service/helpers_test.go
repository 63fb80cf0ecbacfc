package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/query"
	"github.com/ignatzorin/directory-backend/internal/repository"
)

func strPtr(s string) *string { return &s }

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SelectProfiles(ctx context.Context, q query.Query) ([]models.Profile, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *mockStore) SelectGroups(ctx context.Context, q query.Query) ([]models.Group, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *mockStore) SelectLocations(ctx context.Context, q query.Query) ([]models.Location, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *mockStore) Distinct(ctx context.Context, q query.Query, column string) ([]string, error) {
	args := m.Called(ctx, q, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type catalog struct {
	store   *repository.MemoryRepository
	kenya   uuid.UUID
	nairobi uuid.UUID
	uganda  uuid.UUID
}

// newCatalog наполняет in-memory хранилище набором, в котором больше
// PageSize публичных людей, чтобы проверять лимит.
func newCatalog(t *testing.T) *catalog {
	t.Helper()

	c := &catalog{
		store:   repository.NewMemoryRepository(),
		kenya:   uuid.New(),
		nairobi: uuid.New(),
		uganda:  uuid.New(),
	}
	region := uuid.New()

	locations := []models.Location{
		{ID: c.kenya, Name: "Kenya", Type: models.LocationTypeCountry},
		{ID: region, Name: "Nairobi County", Type: models.LocationTypeRegion, ParentID: &c.kenya},
		{ID: c.nairobi, Name: "Nairobi", Type: models.LocationTypeCity, ParentID: &region},
		{ID: c.uganda, Name: "Uganda", Type: models.LocationTypeCountry},
	}

	var profiles []models.Profile
	for i := 0; i < PageSize+5; i++ {
		profiles = append(profiles, models.Profile{
			ID:           uuid.New(),
			Name:         fmt.Sprintf("Freelancer %02d", i),
			UserType:     models.UserTypeFreelancer,
			PrimarySkill: strPtr("Design"),
			Visibility:   models.VisibilityPublic,
		})
	}
	profiles = append(profiles,
		models.Profile{ID: uuid.New(), Name: "Amina Writes", Bio: strPtr("Copy for 100% of brands"), UserType: models.UserTypeSocialMediaInfluencer, PrimarySkill: strPtr("Writing"), Visibility: models.VisibilityPublic, LocationID: &c.nairobi},
		models.Profile{ID: uuid.New(), Name: "Otieno", UserType: models.UserTypeOccupationProvider, Occupation: strPtr("Plumbing"), Visibility: models.VisibilityPublic, LocationID: &c.nairobi},
		models.Profile{ID: uuid.New(), Name: "Secret Designer", UserType: models.UserTypeFreelancer, PrimarySkill: strPtr("Design"), Visibility: models.VisibilityPrivate},
		models.Profile{ID: uuid.New(), Name: "Java House", Bio: strPtr("Coffee and meals"), UserType: models.UserTypeBusiness, BusinessType: strPtr("Restaurant"), Visibility: models.VisibilityPublic, LocationID: &c.nairobi},
		models.Profile{ID: uuid.New(), Name: "Kampala Prints", UserType: models.UserTypeBusiness, BusinessType: strPtr("Printing"), Visibility: models.VisibilityPublic, LocationID: &c.uganda},
	)

	groups := []models.Group{
		{ID: uuid.New(), Name: "Nairobi Makers", Description: strPtr("Weekend crafts"), Category: strPtr("Crafts"), Scope: models.GroupScopeLocal, IsPublic: true, LocationID: &c.nairobi},
		{ID: uuid.New(), Name: "Global Writers", Category: strPtr("Writing"), Scope: models.GroupScopeGlobal, IsPublic: true},
		{ID: uuid.New(), Name: "Private Club", Category: strPtr("Finance"), Scope: models.GroupScopeRegional, IsPublic: false},
	}

	_, err := c.store.ImportFixtures(context.Background(), locations, profiles, groups)
	require.NoError(t, err)
	return c
}
