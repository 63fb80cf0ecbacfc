package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/directory-backend/internal/http/response"
)

// ContextIDKey ключ, под которым UUIDValidator кладёт разобранный идентификатор.
const ContextIDKey = "parsedID"

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID,
// и сохраняет его в контексте.
// Использование: router.GET("/profiles/:id", UUIDValidator("id"), handler.GetProfile)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			response.BadRequest(c, "параметр "+paramName+" обязателен")
			c.Abort()
			return
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			response.BadRequest(c, "параметр "+paramName+" должен быть валидным UUID")
			c.Abort()
			return
		}

		c.Set(ContextIDKey, id)
		c.Next()
	}
}
