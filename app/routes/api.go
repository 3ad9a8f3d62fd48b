// Package routes registers the HTTP API.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/ordertrack/app/controllers"
	"github.com/shashiranjanraj/ordertrack/pkg/metrics"
	"github.com/shashiranjanraj/ordertrack/pkg/rbac"
	"github.com/shashiranjanraj/ordertrack/pkg/response"
	"github.com/shashiranjanraj/ordertrack/pkg/router"
)

// Controllers bundles the constructed controllers for registration.
type Controllers struct {
	Auth          *controllers.AuthController
	Orders        *controllers.OrderController
	Notifications *controllers.NotificationController
}

// RegisterAPI mounts every endpoint. authGate resolves the acting user
// from the bearer credential; rbac.RequireAdmin layers the role check on
// top for admin-only mutations.
func RegisterAPI(r *router.Router, c Controllers, authGate router.Middleware) {
	// Health probe, no auth.
	r.Get("/", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"message": "Healthy"})
	})

	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())

	auth := r.Group("/auth")
	auth.Post("/signup", "auth.signup", c.Auth.Signup)
	auth.Post("/login", "auth.login", c.Auth.Login)
	auth.Get("/me", "auth.me", c.Auth.Me, authGate)

	orders := r.Group("/orders", authGate)
	orders.Get("", "orders.list", c.Orders.List)
	orders.Post("", "orders.create", c.Orders.Create, rbac.RequireAdmin)
	orders.Get("/{id}", "orders.show", c.Orders.Get)
	orders.Get("/lookup/by-number/{order_number}", "orders.lookup", c.Orders.GetByNumber)
	orders.Put("/{id}", "orders.update", c.Orders.Update)
	orders.Delete("/{id}", "orders.delete", c.Orders.Delete, rbac.RequireAdmin)
	orders.Post("/{id}/status", "orders.status", c.Orders.UpdateStatus, rbac.RequireAdmin)

	notifications := r.Group("/notifications", authGate)
	notifications.Get("/preferences", "notifications.show", c.Notifications.GetPreferences)
	notifications.Put("/preferences", "notifications.upsert", c.Notifications.UpsertPreferences)
}
