package services

import (
	"errors"

	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/pkg/logger"
	"gorm.io/gorm"
)

func internalError(message string, err error) error {
	logger.Error("persistence_failed", err, map[string]interface{}{
		"message": message,
	})
	return apperror.Internal(message, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
