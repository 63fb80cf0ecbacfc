// Package goroutine запускает фоновые задачи с восстановлением после panic.
package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/logger"
)

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	log logrus.FieldLogger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(log logrus.FieldLogger) *RecoveryHandler {
	return &RecoveryHandler{log: log}
}

// Go запускает горутину с обработкой panic
func (rh *RecoveryHandler) Go(fn func()) {
	go func() {
		defer rh.recover()
		fn()
	}()
}

// GoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) GoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover()
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover() {
	if r := recover(); r != nil {
		rh.log.WithFields(logrus.Fields{
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("panic in goroutine")
	}
}

// SafeGo запускает безопасную горутину с логгером приложения.
func SafeGo(fn func()) {
	NewRecoveryHandler(logger.Get()).Go(fn)
}

// SafeGoWithContext то же, что SafeGo, но передаёт контекст в задачу.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	NewRecoveryHandler(logger.Get()).GoWithContext(ctx, fn)
}
