package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/MayurUbarhande0/recommendations-api/domain"
)

// activityFetchLimit caps how much history one computation reads.
const activityFetchLimit = 100

// ActivityRepository reads per-user search and purchase history. The
// activity tables are owned by the upstream tracking pipeline; this
// repository is strictly read-only.
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) FetchSearches(ctx context.Context, userID uint64) ([]domain.SearchActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.SearchActivity
	err := r.DB.WithContext(ctx).
		Where("id = ?", userID).
		Order("searched_at DESC").
		Limit(activityFetchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: query searches for user %d: %v", domain.ErrUnavailable, userID, err)
	}

	return rows, nil
}

func (r *ActivityRepository) FetchPurchases(ctx context.Context, userID uint64) ([]domain.PurchaseActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.PurchaseActivity
	err := r.DB.WithContext(ctx).
		Where("id = ?", userID).
		Order("purchased_at DESC").
		Limit(activityFetchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: query purchases for user %d: %v", domain.ErrUnavailable, userID, err)
	}

	return rows, nil
}
