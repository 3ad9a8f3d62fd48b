package seeders

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/config"
	"github.com/shashiranjanraj/ordertrack/pkg/auth"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin ensures the admin account from ADMIN_EMAIL / ADMIN_PASSWORD
// exists. It is idempotent: an existing user with that email is left alone.
func SeedAdmin(db *gorm.DB) error {
	email := config.AdminEmail()
	password := config.AdminPassword()
	if email == "" || password == "" {
		fmt.Print("(ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping) ")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	pref := models.NotificationPreference{
		UserID:  admin.ID,
		Enabled: true,
		Channel: models.ChannelEmail,
		Email:   &admin.Email,
	}
	return db.Create(&pref).Error
}
