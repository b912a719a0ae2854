package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/waste-pickup/internal/auth"
	"github.com/nurpe/waste-pickup/internal/session"
)

const sessionContextKey = "session"

type SessionRegistry interface {
	Get(id uuid.UUID) (*session.Session, bool)
	Create(ctx context.Context) *session.Session
}

type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Session resolves the browser's dashboard from the signed cookie, starting a new one when the
// cookie is missing, invalid or points to a session that no longer exists.
func Session(registry SessionRegistry, parser *auth.Parser, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(opts.Name); err == nil && raw != "" {
			if id, err := parser.Parse(raw); err == nil {
				if s, ok := registry.Get(id); ok {
					c.Set(sessionContextKey, s)
					c.Next()
					return
				}
			}
		}

		s := registry.Create(c.Request.Context())
		token, err := parser.Issue(s.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.Name, token, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

func MustSession(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	s, ok := value.(*session.Session)
	return s, ok
}

// AdminOnly rejects requests from sessions that have not passed the admin login.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := MustSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
			return
		}
		if !s.Dashboard.LoggedIn() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin login required"})
			return
		}
		c.Next()
	}
}
