package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
)

// OrderRepository handles database operations for orders and their
// append-only status history. Every mutation that touches both the order
// row and the history log runs inside a single transaction so readers
// never observe an order whose current_status disagrees with its latest
// history entry.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order with status "created" and appends the
// system-generated creation history entry (no prior status, no acting
// user). A duplicate order_number is not pre-checked; the unique
// constraint violation is translated to apperr.ErrConflict, which avoids
// the check-then-insert race.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.CurrentStatus = models.StatusCreated

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		entry := models.OrderStatusHistory{
			OrderID:   order.ID,
			OldStatus: nil,
			NewStatus: order.CurrentStatus,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// FindByID looks up an order by primary key.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &order, nil
}

// FindByNumber looks up an order by its customer-facing number.
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", number).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find order by number: %w", err)
	}
	return &order, nil
}

// History returns the full audit log for an order, ordered by
// (changed_at, id) ascending. The id tie-break keeps the order
// deterministic when timestamps collide at the store's resolution.
func (r *OrderRepository) History(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load history for order %d: %w", orderID, err)
	}
	return entries, nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListByUser returns one user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// Update persists changes to an order's mutable fields and bumps
// updated_at.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("update order %d: %w", order.ID, err)
	}
	return nil
}

// Delete removes an order; the schema cascades to its history rows.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the order's current status and appends the matching
// history entry in one transaction: either both persist or neither does.
// The old status recorded is the value read inside this transaction.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID uint, newStatus models.OrderStatus, note *string, actorID uint) (*models.Order, error) {
	var order models.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}

		old := order.CurrentStatus
		order.CurrentStatus = newStatus
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		changedBy := actorID
		entry := models.OrderStatusHistory{
			OrderID:         order.ID,
			OldStatus:       &old,
			NewStatus:       newStatus,
			ChangedByUserID: &changedBy,
			Note:            note,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("update status for order %d: %w", orderID, err)
	}
	return &order, nil
}

// isUniqueViolation classifies duplicate-key failures across the
// supported drivers. GORM's error translation covers sqlite and mysql;
// the pgconn check catches postgres errors that arrive untranslated.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
