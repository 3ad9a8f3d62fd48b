package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260301000001_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260301000002_create_order_status_history_table", &CreateOrderStatusHistoryTable{})
	migration.Register("20260301000003_create_notification_preferences_table", &CreateNotificationPreferencesTable{})
}

// -------- 0000: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0001: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0002: order_status_history --------

type CreateOrderStatusHistoryTable struct{}

func (m *CreateOrderStatusHistoryTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.OrderStatusHistory{})
}

func (m *CreateOrderStatusHistoryTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_status_history")
}

// -------- 0003: notification_preferences --------

type CreateNotificationPreferencesTable struct{}

func (m *CreateNotificationPreferencesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.NotificationPreference{})
}

func (m *CreateNotificationPreferencesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("notification_preferences")
}
