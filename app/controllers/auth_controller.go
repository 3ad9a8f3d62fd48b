// Package controllers maps HTTP requests onto the service layer.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/ordertrack/app/services"
	"github.com/shashiranjanraj/ordertrack/pkg/bind"
	"github.com/shashiranjanraj/ordertrack/pkg/logger"
	"github.com/shashiranjanraj/ordertrack/pkg/middleware"
	"github.com/shashiranjanraj/ordertrack/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Signup creates a customer account with default notification preferences.
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.Signup(r.Context(), body.Email, body.Password)
	if err != nil {
		response.FromError(w, err, "Email already registered")
		return
	}

	logger.WithCtx(r.Context()).Info("user signed up", "user_id", user.ID)
	response.Created(w, user.Public())
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns a bearer token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		response.FromError(w, err, "Invalid credentials")
		return
	}

	response.Success(w, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated user's public profile.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}
	response.Success(w, user.Public())
}
