package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
)

// PreferenceUpsert carries the incoming preference fields. Pointer fields
// distinguish "absent" from "empty".
type PreferenceUpsert struct {
	Enabled   bool
	Channel   models.NotificationChannel
	Email     *string
	Phone     *string
	PushToken *string
}

// PreferenceService handles notification preference reads and upserts.
type PreferenceService struct {
	prefs *repositories.PreferenceRepository
}

func NewPreferenceService(prefs *repositories.PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefs: prefs}
}

// Get returns the caller's preference row.
func (s *PreferenceService) Get(ctx context.Context, user *models.User) (*models.NotificationPreference, error) {
	return s.prefs.FindByUser(ctx, user.ID)
}

// Upsert creates the row if absent, otherwise replaces it. Unlike order
// updates this is a full replace: an omitted phone or push_token is
// cleared to null. Email is the one exception: when absent it retains
// its previous value, so the address seeded at signup does not vanish
// from a request that only changes the channel.
func (s *PreferenceService) Upsert(ctx context.Context, user *models.User, in PreferenceUpsert) (*models.NotificationPreference, error) {
	pref, err := s.prefs.FindByUser(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		pref = &models.NotificationPreference{UserID: user.ID}
	}

	pref.Enabled = in.Enabled
	pref.Channel = in.Channel
	if in.Email != nil {
		pref.Email = in.Email
	}
	pref.Phone = in.Phone
	pref.PushToken = in.PushToken

	if err := s.prefs.Save(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
