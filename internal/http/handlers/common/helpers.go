package common

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/directory-backend/internal/http/middleware"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/pkg/apperror"
)

// ErrInvalidUUID is returned when UUID parsing fails
var ErrInvalidUUID = errors.New("неверный формат UUID")

// PathID returns the id parsed by middleware.UUIDValidator, falling back to
// parsing the "id" path parameter directly.
func PathID(c *gin.Context) (uuid.UUID, error) {
	if raw, ok := c.Get(middleware.ContextIDKey); ok {
		if id, ok := raw.(uuid.UUID); ok {
			return id, nil
		}
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Wrap(ErrInvalidUUID, apperror.ErrCodeBadRequest, ErrInvalidUUID.Error())
	}
	return id, nil
}

// BindAndValidate binds JSON request and returns a validation AppError
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("ошибка валидации запроса: %v", err))
	}
	return nil
}

// DirectoryQuery reads tab, q, category and location query parameters.
// Sentinel values and empty strings become absent filters.
func DirectoryQuery(c *gin.Context, defaultTab string) (models.Domain, models.Filter, error) {
	domain, err := models.ParseDomain(c.DefaultQuery("tab", defaultTab))
	if err != nil {
		return "", models.Filter{}, err
	}
	filter, err := models.ParseFilter(c.Query("q"), c.Query("category"), c.Query("location"))
	if err != nil {
		return "", models.Filter{}, apperror.Wrap(err, apperror.ErrCodeBadRequest, "неверный идентификатор локации")
	}
	return domain, filter, nil
}
