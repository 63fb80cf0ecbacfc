package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/directory-backend/internal/http/middleware"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/onboarding"
	"github.com/ignatzorin/directory-backend/internal/repository"
	"github.com/ignatzorin/directory-backend/internal/service"
)

func strPtr(s string) *string { return &s }

type testEnv struct {
	router  *gin.Engine
	store   *repository.MemoryRepository
	kenya   uuid.UUID
	profile uuid.UUID
	hidden  uuid.UUID
	group   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		store:   repository.NewMemoryRepository(),
		kenya:   uuid.New(),
		profile: uuid.New(),
		hidden:  uuid.New(),
		group:   uuid.New(),
	}
	uganda := uuid.New()

	_, err := env.store.ImportFixtures(context.Background(),
		[]models.Location{
			{ID: env.kenya, Name: "Kenya", Type: models.LocationTypeCountry},
			{ID: uganda, Name: "Uganda", Type: models.LocationTypeCountry},
		},
		[]models.Profile{
			{ID: env.profile, Name: "Amina Writes", UserType: models.UserTypeSocialMediaInfluencer, PrimarySkill: strPtr("Writing"), Visibility: models.VisibilityPublic, LocationID: &env.kenya},
			{ID: uuid.New(), Name: "Otieno", UserType: models.UserTypeOccupationProvider, Occupation: strPtr("Plumbing"), Visibility: models.VisibilityPublic, LocationID: &env.kenya},
			{ID: uuid.New(), Name: "Java House", UserType: models.UserTypeBusiness, BusinessType: strPtr("Restaurant"), Visibility: models.VisibilityPublic, LocationID: &uganda},
			{ID: env.hidden, Name: "Secret", UserType: models.UserTypeFreelancer, PrimarySkill: strPtr("Design"), Visibility: models.VisibilityPrivate},
		},
		[]models.Group{
			{ID: env.group, Name: "Nairobi Makers", Category: strPtr("Crafts"), Scope: models.GroupScopeLocal, IsPublic: true, LocationID: &env.kenya},
			{ID: uuid.New(), Name: "Private Club", Category: strPtr("Secrets"), Scope: models.GroupScopeGlobal, IsPublic: false},
		},
	)
	require.NoError(t, err)

	cache := service.NewCacheService(context.Background(), 0)
	facets := service.NewFacetService(env.store, cache, time.Minute)
	search := service.NewSearchService(env.store)
	wizards := onboarding.NewService(env.store, facets, cache, time.Hour)

	directory := NewDirectoryHandler(search, facets)
	onboardingHandler := NewOnboardingHandler(wizards)
	health := NewHealthHandler(env.store, cache, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/health", health.Health)

	api := r.Group("/api")
	api.GET("/directory/profiles", directory.ListProfiles)
	api.GET("/directory/groups", directory.ListGroups)
	api.GET("/directory/categories", directory.ListCategories)
	api.GET("/directory/locations", directory.ListLocations)
	api.GET("/profiles/:id", middleware.UUIDValidator("id"), directory.GetProfile)
	api.GET("/groups/:id", middleware.UUIDValidator("id"), directory.GetGroup)

	api.POST("/onboarding", onboardingHandler.Start)
	wizard := api.Group("/onboarding/:id", middleware.UUIDValidator("id"))
	wizard.GET("", onboardingHandler.Get)
	wizard.GET("/preview", onboardingHandler.Preview)
	wizard.POST("/niche", onboardingHandler.SelectNiche)
	wizard.POST("/profile", onboardingHandler.SubmitProfile)
	wizard.POST("/edit", onboardingHandler.Edit)
	wizard.POST("/back", onboardingHandler.Back)
	wizard.POST("/confirm", onboardingHandler.Confirm)

	env.router = r
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (env *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}
