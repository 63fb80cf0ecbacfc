package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/directory-backend/internal/http/handlers/common"
	"github.com/ignatzorin/directory-backend/internal/http/response"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/pkg/apperror"
	repocommon "github.com/ignatzorin/directory-backend/internal/repository/common"
	"github.com/ignatzorin/directory-backend/internal/service"
)

// DirectoryHandler отдаёт каталог профилей и групп.
type DirectoryHandler struct {
	search *service.SearchService
	facets *service.FacetService
}

// NewDirectoryHandler создаёт хэндлер каталога.
func NewDirectoryHandler(search *service.SearchService, facets *service.FacetService) *DirectoryHandler {
	return &DirectoryHandler{search: search, facets: facets}
}

// ListProfiles GET /api/directory/profiles?tab=&q=&category=&location=
func (h *DirectoryHandler) ListProfiles(c *gin.Context) {
	domain, filter, err := common.DirectoryQuery(c, "users")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !domain.IsProfiles() {
		_ = c.Error(apperror.New(apperror.ErrCodeBadRequest, "вкладка groups отдаётся через /api/directory/groups"))
		return
	}

	profiles := h.search.FetchProfiles(c.Request.Context(), domain, filter)
	response.Success(c, gin.H{
		"tab":      domain,
		"filter":   filter,
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// ListGroups GET /api/directory/groups?q=&category=&location=
func (h *DirectoryHandler) ListGroups(c *gin.Context) {
	_, filter, err := common.DirectoryQuery(c, "groups")
	if err != nil {
		_ = c.Error(err)
		return
	}

	groups := h.search.FetchGroups(c.Request.Context(), filter)
	response.Success(c, gin.H{
		"filter": filter,
		"groups": groups,
		"count":  len(groups),
	})
}

// ListCategories GET /api/directory/categories?tab=
func (h *DirectoryHandler) ListCategories(c *gin.Context) {
	domain, err := models.ParseDomain(c.DefaultQuery("tab", "users"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, gin.H{
		"tab":        domain,
		"categories": h.facets.FetchCategories(c.Request.Context(), domain),
	})
}

// ListLocations GET /api/directory/locations
func (h *DirectoryHandler) ListLocations(c *gin.Context) {
	response.Success(c, gin.H{
		"locations": h.facets.FetchLocations(c.Request.Context()),
	})
}

// GetProfile GET /api/profiles/:id
func (h *DirectoryHandler) GetProfile(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.search.GetProfile(c.Request.Context(), id)
	if errors.Is(err, repocommon.ErrNotFound) {
		_ = c.Error(apperror.ErrProfileNotFound)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, profile)
}

// GetGroup GET /api/groups/:id
func (h *DirectoryHandler) GetGroup(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	group, err := h.search.GetGroup(c.Request.Context(), id)
	if errors.Is(err, repocommon.ErrNotFound) {
		_ = c.Error(apperror.ErrGroupNotFound)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, group)
}
