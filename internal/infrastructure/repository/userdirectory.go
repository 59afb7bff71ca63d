package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

// UserDirectoryImpl resolves user contact fields from the accounts-owned
// users table. Read-only: the accounts system owns the schema, billing
// only looks up who it is charging.
type UserDirectoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserDirectory(db *gorm.DB, logger logger.Interface) *UserDirectoryImpl {
	return &UserDirectoryImpl{db: db, logger: logger}
}

func (r *UserDirectoryImpl) GetUserEmail(ctx context.Context, userID uint) (string, string, error) {
	var row struct {
		Email string
		Name  string
	}

	err := r.db.WithContext(ctx).
		Table("users").
		Select("email", "name").
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("user %d not found", userID)
		}
		r.logger.Errorw("failed to look up user", "error", err, "user_id", userID)
		return "", "", fmt.Errorf("failed to look up user %d: %w", userID, err)
	}

	return row.Email, row.Name, nil
}
