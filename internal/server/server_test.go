package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/internal/server"
	"github.com/shashiranjanraj/ordertrack/pkg/auth"
	"github.com/shashiranjanraj/ordertrack/pkg/database"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-do-not-use")
	os.Exit(m.Run())
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderStatusHistory{},
		&models.NotificationPreference{},
	))

	hash, err := auth.HashPassword("admin-password")
	require.NoError(t, err)
	admin := models.User{Email: "admin@example.com", PasswordHash: hash, Role: models.RoleAdmin, IsActive: true}
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), &admin))

	ts := httptest.NewServer(server.BuildRouter(db).Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts}
}

// do issues a JSON request and decodes the response envelope.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, code, "login: %v", body)
	data := body["data"].(map[string]interface{})
	return data["access_token"].(string)
}

func (s *testServer) signup(t *testing.T, email, password string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, code, "signup: %v", body)
	return s.login(t, email, password)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Healthy", data["message"])
}

func TestSignupLoginMe(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com", "password123")

	code, body := s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", data["email"])
	assert.Equal(t, "customer", data["role"])
	assert.NotContains(t, data, "password_hash")
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestSignupDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice@example.com", "password123")

	code, body := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already registered", body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/orders", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@example.com", "admin-password")
	aliceToken := s.signup(t, "alice@example.com", "password123")
	bobToken := s.signup(t, "bob@example.com", "password123")

	// Find alice's id for the owner query param.
	_, me := s.do(t, http.MethodGet, "/auth/me", aliceToken, nil)
	aliceID := uint(me["data"].(map[string]interface{})["id"].(float64))

	// Customers may not create orders.
	code, _ := s.do(t, http.MethodPost, fmt.Sprintf("/orders?user_id=%d", aliceID), aliceToken, map[string]string{
		"order_number": "ORD-1", "title": "Keyboard",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodPost, fmt.Sprintf("/orders?user_id=%d", aliceID), adminToken, map[string]string{
		"order_number": "ORD-1", "title": "Keyboard",
	})
	require.Equal(t, http.StatusCreated, code, "create: %v", body)
	created := body["data"].(map[string]interface{})
	orderID := int(created["id"].(float64))
	assert.Equal(t, "created", created["current_status"])

	// Owner reads it, with history; strangers get 403.
	code, body = s.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	detail := body["data"].(map[string]interface{})
	assert.Len(t, detail["history"], 1)

	code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// Lookup by number behaves identically.
	code, body = s.do(t, http.MethodGet, "/orders/lookup/by-number/ORD-1", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, orderID, body["data"].(map[string]interface{})["id"].(float64))

	// Status updates are admin-only and append to the audit log.
	code, _ = s.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", orderID), aliceToken, map[string]string{
		"new_status": "shipped",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", orderID), adminToken, map[string]string{
		"new_status": "shipped", "note": "left the warehouse",
	})
	require.Equal(t, http.StatusOK, code, "status: %v", body)
	detail = body["data"].(map[string]interface{})
	assert.Equal(t, "shipped", detail["current_status"])
	history := detail["history"].([]interface{})
	require.Len(t, history, 2)
	last := history[1].(map[string]interface{})
	assert.Equal(t, "created", last["old_status"])
	assert.Equal(t, "shipped", last["new_status"])
	assert.Equal(t, "left the warehouse", last["note"])

	// Unknown statuses are a validation failure, not a 500.
	code, _ = s.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/status", orderID), adminToken, map[string]string{
		"new_status": "teleported",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	// Listing is role-scoped.
	code, body = s.do(t, http.MethodGet, "/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)
	code, body = s.do(t, http.MethodGet, "/orders", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["data"])

	// Deletion is admin-only.
	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNotificationPreferences(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "alice@example.com", "password123")

	code, body := s.do(t, http.MethodGet, "/notifications/preferences", token, nil)
	require.Equal(t, http.StatusOK, code)
	pref := body["data"].(map[string]interface{})
	assert.Equal(t, "email", pref["channel"])
	assert.Equal(t, "alice@example.com", pref["email"])

	code, body = s.do(t, http.MethodPut, "/notifications/preferences", token, map[string]interface{}{
		"enabled": true, "channel": "sms", "phone": "+15550100",
	})
	require.Equal(t, http.StatusOK, code, "upsert: %v", body)
	pref = body["data"].(map[string]interface{})
	assert.Equal(t, "sms", pref["channel"])
	assert.Equal(t, "+15550100", pref["phone"])
	assert.Equal(t, "alice@example.com", pref["email"], "email retained when omitted")

	code, _ = s.do(t, http.MethodPut, "/notifications/preferences", token, map[string]interface{}{
		"enabled": true, "channel": "carrier-pigeon",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}
