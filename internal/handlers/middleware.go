package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/services"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/store"
)

// SessionHeader carries the id returned by the login endpoints.
const SessionHeader = "X-Session-ID"

const (
	ctxUser    = "user"
	ctxSession = "session_id"
)

// RequireSession resolves the caller's session or answers 401.
func RequireSession(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		user, err := users.CurrentUser(c.Request.Context(), sessionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(ctxUser, user)
		c.Set(ctxSession, sessionID)
		c.Next()
	}
}

// RequireRole answers 403 unless the session user has one of roles. It must
// run after RequireSession.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		respondError(c, apperrors.ErrForbidden)
	}
}

func currentUser(c *gin.Context) models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(models.User); ok {
			return u
		}
	}
	return models.User{}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSession)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidTransition), errors.Is(err, services.ErrStale):
		return http.StatusConflict
	case errors.Is(err, store.ErrBusy):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
