package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/services"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
	"github.com/shashiranjanraj/ordertrack/pkg/bind"
	"github.com/shashiranjanraj/ordertrack/pkg/logger"
	"github.com/shashiranjanraj/ordertrack/pkg/middleware"
	"github.com/shashiranjanraj/ordertrack/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// caller resolves the authenticated user or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "")
	}
	return user, ok
}

func orderID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err == nil
}

type orderCreateRequest struct {
	OrderNumber string  `json:"order_number" validate:"required,max=64"`
	Title       string  `json:"title"        validate:"required,max=255"`
	Description *string `json:"description"`
}

// Create handles POST /orders?user_id=<owner>. Admin only.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	ownerID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		response.ValidationError(w, map[string]string{"user_id": "is required"})
		return
	}

	var body orderCreateRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.Create(r.Context(), user, uint(ownerID), body.OrderNumber, body.Title, body.Description)
	if err != nil {
		response.FromError(w, err, "Order number already exists")
		return
	}

	logger.WithCtx(r.Context()).Info("order created",
		"order_id", order.ID, "order_number", order.OrderNumber, "owner_id", order.UserID)
	response.Created(w, order)
}

// Get handles GET /orders/{id}.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := orderID(r)
	if !ok {
		response.NotFound(w, "Order not found")
		return
	}

	detail, err := c.service.Get(r.Context(), user, id)
	if err != nil {
		response.FromError(w, err, orderErrMessage(err))
		return
	}
	response.Success(w, detail)
}

// GetByNumber handles GET /orders/lookup/by-number/{order_number}.
func (c *OrderController) GetByNumber(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	detail, err := c.service.GetByNumber(r.Context(), user, chi.URLParam(r, "order_number"))
	if err != nil {
		response.FromError(w, err, orderErrMessage(err))
		return
	}
	response.Success(w, detail)
}

// List handles GET /orders. Admins see everything, customers their own.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	orders, err := c.service.List(r.Context(), user)
	if err != nil {
		response.FromError(w, err, "")
		return
	}
	response.Success(w, orders)
}

type orderUpdateRequest struct {
	Title       *string `json:"title"       validate:"nullable,max=255"`
	Description *string `json:"description"`
}

// Update handles PUT /orders/{id}. Only provided fields overwrite.
func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := orderID(r)
	if !ok {
		response.NotFound(w, "Order not found")
		return
	}

	var body orderUpdateRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.UpdateDetails(r.Context(), user, id, body.Title, body.Description)
	if err != nil {
		response.FromError(w, err, orderErrMessage(err))
		return
	}
	response.Success(w, order)
}

// Delete handles DELETE /orders/{id}. Admin only, cascades to history.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := orderID(r)
	if !ok {
		response.NotFound(w, "Order not found")
		return
	}

	if err := c.service.Delete(r.Context(), user, id); err != nil {
		response.FromError(w, err, orderErrMessage(err))
		return
	}

	logger.WithCtx(r.Context()).Info("order deleted", "order_id", id)
	response.NoContent(w)
}

type statusUpdateRequest struct {
	NewStatus models.OrderStatus `json:"new_status" validate:"required,in=created,processing,shipped,delivered,cancelled"`
	Note      *string            `json:"note"`
}

// UpdateStatus handles POST /orders/{id}/status. Admin only. Any
// transition is accepted; the response carries the full ordered history.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := orderID(r)
	if !ok {
		response.NotFound(w, "Order not found")
		return
	}

	var body statusUpdateRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	detail, err := c.service.UpdateStatus(r.Context(), user, id, body.NewStatus, body.Note)
	if err != nil {
		response.FromError(w, err, orderErrMessage(err))
		return
	}

	logger.WithCtx(r.Context()).Info("order status updated",
		"order_id", id, "new_status", body.NewStatus)
	response.Success(w, detail)
}

// orderErrMessage picks the client-facing wording; response.FromError
// picks the status code.
func orderErrMessage(err error) string {
	if errors.Is(err, apperr.ErrForbidden) {
		return "Not authorized to access this order"
	}
	return "Order not found"
}
