package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/http/response"
	"github.com/ignatzorin/directory-backend/internal/logger"
	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/onboarding"
	"github.com/ignatzorin/directory-backend/internal/pkg/apperror"
	"github.com/ignatzorin/directory-backend/internal/repository/common"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := ToAppError(err)

		entry := logger.Get().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"code":   string(appErr.Code),
		})
		if appErr.HTTPStatus >= 500 {
			entry.Error("Request error")
		} else {
			entry.Info("Request rejected")
		}

		response.Error(c, appErr)
	}
}

// ToAppError переводит доменные ошибки в AppError.
func ToAppError(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *onboarding.ValidationError
	switch {
	case errors.As(err, &verr):
		return apperror.Wrap(err, apperror.ErrCodeValidation, verr.Field+": "+verr.Message)
	case errors.Is(err, onboarding.ErrInvalidTransition):
		return apperror.Wrap(err, apperror.ErrCodeInvalidTransition, "шаг анкеты недоступен из текущего состояния")
	case errors.Is(err, onboarding.ErrWizardNotFound):
		return apperror.Wrap(err, apperror.ErrWizardNotFound.Code, apperror.ErrWizardNotFound.Message)
	case errors.Is(err, models.ErrUnknownDomain):
		return apperror.Wrap(err, apperror.ErrUnknownTab.Code, apperror.ErrUnknownTab.Message)
	case errors.Is(err, common.ErrNotFound):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "ресурс не найден")
	case errors.Is(err, common.ErrAlreadyExists):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "запись уже существует")
	case errors.Is(err, common.ErrInvalidInput):
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные данные")
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
}
