package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/catalog"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/redis"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/services"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/store"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/genai"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rc := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })

	menu, err := catalog.Default()
	require.NoError(t, err)
	st := store.New()
	t.Cleanup(st.Close)

	carts := services.NewCartService(menu)
	users, err := services.NewUserService(rc, rc, carts, services.Credentials{
		OTP: "1234",
		Passwords: map[models.Role]string{
			models.RoleAdmin:    "admin123",
			models.RoleKitchen:  "chef123",
			models.RoleDelivery: "rider123",
		},
	}, time.Hour, nil)
	require.NoError(t, err)

	gen := genai.Unavailable()
	assistant := services.NewAssistantService(services.NewRemoteParser(gen, nil, time.Second, nil), carts, menu, rc, time.Hour, nil)
	api := NewAPIHandler(
		users,
		services.NewMenuService(menu, gen, nil, time.Second, nil),
		carts,
		services.NewOrderService(st, carts, menu, nil),
		services.NewRecommendationService(carts, gen, rc, time.Minute, time.Second, nil),
		assistant,
	)

	router := gin.New()
	Register(router, api, NewAssistantHandler(assistant), users)
	return router
}

func do(t *testing.T, r http.Handler, method, path, session string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func staffSession(t *testing.T, r http.Handler, role, password string) string {
	t.Helper()
	w, out := do(t, r, http.MethodPost, "/api/auth/staff", "", gin.H{"role": role, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return out["sessionId"].(string)
}

func customerSession(t *testing.T, r http.Handler, mobile, name string) string {
	t.Helper()
	w, _ := do(t, r, http.MethodPost, "/api/auth/otp", "", gin.H{"mobile": mobile})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, out := do(t, r, http.MethodPost, "/api/auth/customer", "", gin.H{"mobile": mobile, "otp": "1234", "name": name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return out["sessionId"].(string)
}

func TestAuth(t *testing.T) {
	r := newTestServer(t)

	w, _ := do(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out := do(t, r, http.MethodPost, "/api/auth/staff", "", gin.H{"role": "ADMIN", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password must be at least 4 characters", out["error"])

	admin := staffSession(t, r, "ADMIN", "admin123")
	w, out = do(t, r, http.MethodGet, "/api/auth/me", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Owner", out["name"])
	assert.Equal(t, "ADMIN", out["role"])

	w, _ = do(t, r, http.MethodDelete, "/api/auth/session", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/auth/me", admin, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/otp", "", gin.H{"mobile": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderFlow(t *testing.T) {
	r := newTestServer(t)
	asha := customerSession(t, r, "9876543210", "Asha")
	chef := staffSession(t, r, "KITCHEN", "chef123")
	rider := staffSession(t, r, "DELIVERY", "rider123")
	admin := staffSession(t, r, "ADMIN", "admin123")

	w, _ := do(t, r, http.MethodPost, "/api/cart/items/nope", asha, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []string{"301", "404", "404"} {
		w, _ = do(t, r, http.MethodPost, "/api/cart/items/"+id, asha, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w, out := do(t, r, http.MethodGet, "/api/cart", asha, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, out["count"])

	w, out = do(t, r, http.MethodPost, "/api/orders", asha, gin.H{"type": "DELIVERY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing delivery address", out["error"])

	w, out = do(t, r, http.MethodPost, "/api/orders", asha, gin.H{"type": "DELIVERY", "deliveryAddress": "12 Station Road"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := out["id"].(string)
	assert.Equal(t, "PENDING", out["status"])
	assert.Equal(t, "12 Station Road", out["deliveryAddress"])

	w, out = do(t, r, http.MethodGet, "/api/cart", asha, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["count"])

	status := func(session, next string) int {
		w, _ := do(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%s/status", id), session, gin.H{"status": next})
		return w.Code
	}
	assert.Equal(t, http.StatusForbidden, status(chef, "READY"))
	assert.Equal(t, http.StatusOK, status(chef, "PREPARING"))
	assert.Equal(t, http.StatusForbidden, status(asha, "CANCELLED"))
	assert.Equal(t, http.StatusOK, status(chef, "READY"))
	assert.Equal(t, http.StatusOK, status(rider, "DELIVERED"))
	assert.Equal(t, http.StatusConflict, status(admin, "CANCELLED"))

	w, out = do(t, r, http.MethodGet, "/api/orders/"+id, asha, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DELIVERED", out["status"])

	ravi := customerSession(t, r, "9123456789", "Ravi")
	w, _ = do(t, r, http.MethodGet, "/api/orders/"+id, ravi, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewsAreRoleScoped(t *testing.T) {
	r := newTestServer(t)
	chef := staffSession(t, r, "KITCHEN", "chef123")
	admin := staffSession(t, r, "ADMIN", "admin123")
	asha := customerSession(t, r, "9876543210", "Asha")

	w, out := do(t, r, http.MethodGet, "/api/views/kitchen", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["empty"])
	assert.Equal(t, "No active orders in queue.", out["message"])

	w, _ = do(t, r, http.MethodGet, "/api/views/admin", chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/views/delivery", asha, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out = do(t, r, http.MethodGet, "/api/views/admin", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["totalRevenue"])

	w, _ = do(t, r, http.MethodGet, "/api/views/customer", asha, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMenuEditing(t *testing.T) {
	r := newTestServer(t)
	admin := staffSession(t, r, "ADMIN", "admin123")
	chef := staffSession(t, r, "KITCHEN", "chef123")

	w, out := do(t, r, http.MethodGet, "/api/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["items"], 28)

	w, _ = do(t, r, http.MethodPut, "/api/menu/301/description", chef, gin.H{"description": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out = do(t, r, http.MethodPut, "/api/menu/301/description", admin, gin.H{"description": "Smoky and rich"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Smoky and rich", out["description"])

	w, out = do(t, r, http.MethodPost, "/api/menu/301/description/generate", admin, gin.H{"ingredients": "butter"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.DescriptionNoKeyFallback, out["description"])

	w, _ = do(t, r, http.MethodPut, "/api/menu/nope/description", admin, gin.H{"description": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssistantEndpoints(t *testing.T) {
	r := newTestServer(t)
	asha := customerSession(t, r, "9876543210", "Asha")

	w, out := do(t, r, http.MethodGet, "/api/assistant/greeting", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out["response"], "Raju")

	w, out = do(t, r, http.MethodPost, "/api/assistant/message", asha, gin.H{"text": "2 garlic naan please"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, out["cart"].(map[string]interface{})["count"])

	w, out = do(t, r, http.MethodPost, "/api/assistant/speech-error", asha, gin.H{"code": "network"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["retryable"])

	w, out = do(t, r, http.MethodPost, "/api/assistant/voice", "", gin.H{
		"locale": "en-IN",
		"voices": []gin.H{{"name": "Samantha", "lang": "en-US"}, {"name": "Lekha", "lang": "hi-IN"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lekha", out["voice"].(map[string]interface{})["name"])

	w, out = do(t, r, http.MethodGet, "/api/cart/recommendations", asha, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, out["recommendations"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest},
		{apperrors.ErrNoSession, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", apperrors.ErrForbidden), http.StatusForbidden},
		{apperrors.ErrNotFound, http.StatusNotFound},
		{&store.TransitionError{OrderID: "ORD-1", From: models.StatusDelivered, To: models.StatusReady}, http.StatusConflict},
		{services.ErrStale, http.StatusConflict},
		{store.ErrBusy, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
