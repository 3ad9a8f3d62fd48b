package services

import (
	"context"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
	"github.com/shashiranjanraj/ordertrack/pkg/metrics"
)

// OrderDetail is an order together with its full audit log, ordered by
// (changed_at, id) ascending.
type OrderDetail struct {
	models.Order
	History []models.OrderStatusHistory `json:"history"`
}

// OrderService owns the order access rules: admins read and write
// everything, customers read only their own orders. Role checks consult
// the caller record freshly loaded by the authentication gate, never
// token claims.
type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// canView reports whether caller may read the order.
func canView(caller *models.User, order *models.Order) bool {
	return caller.IsAdmin() || order.UserID == caller.ID
}

// Create inserts an order for the given owner. Admin only. The order
// starts in status "created" with its creation history entry; a duplicate
// order number returns apperr.ErrConflict.
func (s *OrderService) Create(ctx context.Context, actor *models.User, ownerID uint, orderNumber, title string, description *string) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}

	order := models.Order{
		OrderNumber: orderNumber,
		UserID:      ownerID,
		Title:       title,
		Description: description,
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Get returns an order with its history. Customers may only fetch their
// own orders; the existence of a foreign order is still revealed as 403,
// matching the owner-scoping contract.
func (s *OrderService) Get(ctx context.Context, caller *models.User, id uint) (*OrderDetail, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, caller, order)
}

// GetByNumber is Get keyed by the customer-facing order number. It shares
// the history query with Get, so ordering is identical on both paths.
func (s *OrderService) GetByNumber(ctx context.Context, caller *models.User, number string) (*OrderDetail, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, caller, order)
}

func (s *OrderService) detail(ctx context.Context, caller *models.User, order *models.Order) (*OrderDetail, error) {
	if !canView(caller, order) {
		return nil, apperr.ErrForbidden
	}

	history, err := s.orders.History(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, History: history}, nil
}

// List returns all orders for admins and only the caller's own orders
// otherwise, newest first. No pagination.
func (s *OrderService) List(ctx context.Context, caller *models.User) ([]models.Order, error) {
	if caller.IsAdmin() {
		return s.orders.ListAll(ctx)
	}
	return s.orders.ListByUser(ctx, caller.ID)
}

// UpdateDetails overwrites title and/or description. Nil fields are left
// unchanged. Admins may update any order, customers only their own.
func (s *OrderService) UpdateDetails(ctx context.Context, caller *models.User, id uint, title, description *string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, order) {
		return nil, apperr.ErrForbidden
	}

	if title != nil {
		order.Title = *title
	}
	if description != nil {
		order.Description = description
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes an order and, by cascade, its history. Admin only.
func (s *OrderService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if !actor.IsAdmin() {
		return apperr.ErrForbidden
	}
	return s.orders.Delete(ctx, id)
}

// UpdateStatus records a status transition. Admin only. Any transition is
// allowed, including no-ops and "backwards" moves; there is no state
// machine. The order update and history append are atomic, and the
// history entry records the status as read within that transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *models.User, id uint, newStatus models.OrderStatus, note *string) (*OrderDetail, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}

	order, err := s.orders.UpdateStatus(ctx, id, newStatus, note, actor.ID)
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(newStatus)).Inc()

	history, err := s.orders.History(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, History: history}, nil
}
