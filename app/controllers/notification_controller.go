package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/services"
	"github.com/shashiranjanraj/ordertrack/pkg/bind"
	"github.com/shashiranjanraj/ordertrack/pkg/response"
)

type NotificationController struct {
	service *services.PreferenceService
}

func NewNotificationController(service *services.PreferenceService) *NotificationController {
	return &NotificationController{service: service}
}

// GetPreferences handles GET /notifications/preferences.
func (c *NotificationController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	pref, err := c.service.Get(r.Context(), user)
	if err != nil {
		response.FromError(w, err, "Notification preferences not found")
		return
	}
	response.Success(w, pref)
}

type preferenceUpsertRequest struct {
	Enabled   bool                       `json:"enabled"`
	Channel   models.NotificationChannel `json:"channel"    validate:"required,in=email,sms,push"`
	Email     *string                    `json:"email"      validate:"nullable,email"`
	Phone     *string                    `json:"phone"      validate:"nullable,max=32"`
	PushToken *string                    `json:"push_token" validate:"nullable,max=512"`
}

// UpsertPreferences handles PUT /notifications/preferences. Full replace
// except email, which keeps its previous value when omitted.
func (c *NotificationController) UpsertPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var body preferenceUpsertRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	pref, err := c.service.Upsert(r.Context(), user, services.PreferenceUpsert{
		Enabled:   body.Enabled,
		Channel:   body.Channel,
		Email:     body.Email,
		Phone:     body.Phone,
		PushToken: body.PushToken,
	})
	if err != nil {
		response.FromError(w, err, "")
		return
	}
	response.Success(w, pref)
}
