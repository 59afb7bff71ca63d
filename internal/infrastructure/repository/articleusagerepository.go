package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/persistence/models"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

type ArticleUsageRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewArticleUsageRepository(db *gorm.DB, logger logger.Interface) billing.ArticleUsageRepository {
	return &ArticleUsageRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// CountByUserInPeriod counts articles a user generated inside [periodStart,
// periodEnd]. Soft-deleted articles still count; deleting an article does
// not refund quota.
func (r *ArticleUsageRepositoryImpl) CountByUserInPeriod(ctx context.Context, userID uint, periodStart, periodEnd time.Time) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).Unscoped().Model(&models.ArticleModel{}).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, periodStart, periodEnd).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count articles", "error", err, "user_id", userID)
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
