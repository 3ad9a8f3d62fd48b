package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
)

// PreferenceRepository handles database operations for notification
// preferences.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUser returns the preference row for a user. Signup creates one,
// but the absence path is still surfaced as apperr.ErrNotFound rather
// than assumed impossible.
func (r *PreferenceRepository) FindByUser(ctx context.Context, userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find preference for user %d: %w", userID, err)
	}
	return &pref, nil
}

// Save writes all fields of the preference row and bumps updated_at.
// Save (not Updates) is deliberate: the upsert is a full replace, so
// cleared pointer fields must be written as NULL.
func (r *PreferenceRepository) Save(ctx context.Context, pref *models.NotificationPreference) error {
	if err := r.db.WithContext(ctx).Save(pref).Error; err != nil {
		return fmt.Errorf("save preference for user %d: %w", pref.UserID, err)
	}
	return nil
}
