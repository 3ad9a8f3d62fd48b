package models

import "time"

// OrderStatus is the closed set of order statuses. Transitions are not
// constrained: any status may follow any other, including itself.
type OrderStatus string

const (
	StatusCreated    OrderStatus = "created"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusCreated, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a customer order. CurrentStatus always equals the NewStatus of
// the most recent history row; the two are written in one transaction.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderNumber   string      `gorm:"uniqueIndex;size:64;not null" json:"order_number"`
	UserID        uint        `gorm:"not null;index" json:"user_id"`
	Title         string      `gorm:"size:255;not null" json:"title"`
	Description   *string     `gorm:"type:text" json:"description"`
	CurrentStatus OrderStatus `gorm:"size:32;not null;default:created" json:"current_status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

// OrderStatusHistory is one immutable audit record of a status transition.
// Rows are append-only; they are removed only when their order is deleted.
// OldStatus and ChangedByUserID are nil only for the system-generated
// creation entry.
type OrderStatusHistory struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	OrderID         uint         `gorm:"not null;index" json:"order_id"`
	OldStatus       *OrderStatus `gorm:"size:32" json:"old_status"`
	NewStatus       OrderStatus  `gorm:"size:32;not null" json:"new_status"`
	ChangedByUserID *uint        `json:"changed_by_user_id"`
	Note            *string      `gorm:"type:text" json:"note"`
	ChangedAt       time.Time    `gorm:"autoCreateTime" json:"changed_at"`

	// Weak reference: deleting the acting user nulls the column, it never
	// blocks the deletion.
	ChangedBy *User `gorm:"foreignKey:ChangedByUserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
