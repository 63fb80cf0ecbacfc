package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/directory-backend/internal/http/handlers/common"
	"github.com/ignatzorin/directory-backend/internal/http/response"
	"github.com/ignatzorin/directory-backend/internal/service"
)

// SeedHandler загружает фикстуры каталога. Подключается только в development.
type SeedHandler struct {
	seedService *service.SeedService
	defaultFile string
}

// NewSeedHandler создаёт новый seed handler.
func NewSeedHandler(seedService *service.SeedService, defaultFile string) *SeedHandler {
	return &SeedHandler{
		seedService: seedService,
		defaultFile: defaultFile,
	}
}

// SeedRequest необязательное тело запроса. Без тела загружается файл по умолчанию.
type SeedRequest struct {
	Fixtures *service.Fixtures `json:"fixtures"`
}

// Seed загружает фикстуры.
// POST /api/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	var req SeedRequest
	if c.Request.ContentLength > 0 {
		if err := common.BindAndValidate(c, &req); err != nil {
			_ = c.Error(err)
			return
		}
	}

	var (
		result *service.SeedResult
		err    error
	)
	if req.Fixtures != nil {
		result, err = h.seedService.Seed(c.Request.Context(), req.Fixtures)
	} else {
		result, err = h.seedService.SeedFile(c.Request.Context(), h.defaultFile)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, result)
}
