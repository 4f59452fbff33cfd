package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

const (
	SessionCookieName = "rt_session"
	SessionHeaderName = "x-session-id"

	ContextSessionKey = "sessionID"
	ContextUserKey    = "user"
)

// Session resolves the caller from the rt_session cookie or x-session-id
// header, creating the user (with a seeded wallet in dev mode) on the fly.
// A request with no session at all gets a fresh one via Set-Cookie.
func Session(walletSvc *wallet.Service, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := ""
		if cookie, err := c.Cookie(SessionCookieName); err == nil {
			sessionID = cookie
		}
		if sessionID == "" {
			sessionID = c.GetHeader(SessionHeaderName)
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(SessionCookieName, sessionID, 30*24*3600, "/", "", false, true)
		}

		user, err := walletSvc.EnsureUserBySession(c.Request.Context(), sessionID)
		if err != nil {
			logger.Errorf("Failed to resolve session %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sessionID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// SessionID returns the resolved session id for the request.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}

// User returns the resolved user for the request.
func User(c *gin.Context) *types.UserData {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(*types.UserData); ok {
			return user
		}
	}
	return nil
}
