package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
	"github.com/shashiranjanraj/ordertrack/pkg/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderStatusHistory{},
		&models.NotificationPreference{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := models.User{Email: email, PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), &u))
	return &u
}

func TestCreateSeedsDefaultPreference(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice@example.com", models.RoleCustomer)

	pref, err := repositories.NewPreferenceRepository(db).FindByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelEmail, pref.Channel)
	require.NotNil(t, pref.Email)
	assert.Equal(t, "alice@example.com", *pref.Email)
}

func TestCreateDuplicateEmailLeavesNoPreferenceBehind(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "alice@example.com", models.RoleCustomer)

	dup := models.User{Email: "alice@example.com", PasswordHash: "y", Role: models.RoleCustomer, IsActive: true}
	err := repositories.NewUserRepository(db).Create(context.Background(), &dup)
	require.ErrorIs(t, err, apperr.ErrConflict)

	var prefs int64
	require.NoError(t, db.Model(&models.NotificationPreference{}).Count(&prefs).Error)
	assert.EqualValues(t, 1, prefs, "failed signup rolls back atomically")
}

func TestDeleteUserCascadesAndDetaches(t *testing.T) {
	db := testDB(t)
	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)

	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "alice@example.com", models.RoleCustomer)

	order := models.Order{OrderNumber: "ORD-1", UserID: alice.ID, Title: "Keyboard"}
	require.NoError(t, orders.Create(context.Background(), &order))
	_, err := orders.UpdateStatus(context.Background(), order.ID, models.StatusShipped, nil, admin.ID)
	require.NoError(t, err)

	// Deleting the acting admin detaches the audit rows but keeps them.
	require.NoError(t, users.Delete(context.Background(), admin.ID))
	history, err := orders.History(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[1].ChangedByUserID)

	// Deleting the owner removes the order tree and the preference row.
	require.NoError(t, users.Delete(context.Background(), alice.ID))

	_, err = orders.FindByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var rows int64
	require.NoError(t, db.Model(&models.OrderStatusHistory{}).Count(&rows).Error)
	assert.Zero(t, rows)
	require.NoError(t, db.Model(&models.NotificationPreference{}).Count(&rows).Error)
	assert.Zero(t, rows)

	err = users.Delete(context.Background(), alice.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
