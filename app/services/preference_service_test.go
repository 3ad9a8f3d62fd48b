package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/app/services"
)

func newPreferenceFixture(t *testing.T) (*services.PreferenceService, *models.User) {
	t.Helper()
	db := testDB(t)
	svc := services.NewPreferenceService(repositories.NewPreferenceRepository(db))
	return svc, createUser(t, db, "alice@example.com", models.RoleCustomer, true)
}

func TestGetReturnsSignupDefaults(t *testing.T) {
	svc, alice := newPreferenceFixture(t)

	pref, err := svc.Get(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, pref.Enabled)
	assert.Equal(t, models.ChannelEmail, pref.Channel)
	require.NotNil(t, pref.Email)
	assert.Equal(t, alice.Email, *pref.Email)
	assert.Nil(t, pref.Phone)
	assert.Nil(t, pref.PushToken)
}

func TestUpsertRetainsEmailWhenAbsent(t *testing.T) {
	svc, alice := newPreferenceFixture(t)

	pref, err := svc.Upsert(context.Background(), alice, services.PreferenceUpsert{
		Enabled: true,
		Channel: models.ChannelSMS,
		Phone:   strptr("+15550100"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ChannelSMS, pref.Channel)
	require.NotNil(t, pref.Phone)
	assert.Equal(t, "+15550100", *pref.Phone)
	require.NotNil(t, pref.Email, "email survives a request that omits it")
	assert.Equal(t, alice.Email, *pref.Email)
}

func TestUpsertClearsOmittedPhoneAndPushToken(t *testing.T) {
	svc, alice := newPreferenceFixture(t)

	_, err := svc.Upsert(context.Background(), alice, services.PreferenceUpsert{
		Enabled:   true,
		Channel:   models.ChannelPush,
		Phone:     strptr("+15550100"),
		PushToken: strptr("device-token-1"),
	})
	require.NoError(t, err)

	pref, err := svc.Upsert(context.Background(), alice, services.PreferenceUpsert{
		Enabled: false,
		Channel: models.ChannelEmail,
		Email:   strptr("new@example.com"),
	})
	require.NoError(t, err)

	assert.False(t, pref.Enabled)
	assert.Nil(t, pref.Phone, "omitted phone is cleared, not retained")
	assert.Nil(t, pref.PushToken, "omitted push token is cleared, not retained")
	require.NotNil(t, pref.Email)
	assert.Equal(t, "new@example.com", *pref.Email)

	// The same row is reused across upserts.
	again, err := svc.Get(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, pref.ID, again.ID)
}
