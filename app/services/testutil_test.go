package services_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/pkg/auth"
	"github.com/shashiranjanraj/ordertrack/pkg/database"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-do-not-use")
	os.Exit(m.Run())
}

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

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role, active bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u := models.User{Email: email, PasswordHash: hash, Role: role, IsActive: active}
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), &u))
	return &u
}

func strptr(s string) *string { return &s }
