package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultCookieName 会话 Cookie 名
const DefaultCookieName = "contratos_session"

const sessionKey = "sessionID"

// CookieOptions 会话 Cookie 设置
type CookieOptions struct {
	Name   string
	MaxAge int
	Secure bool
}

// SessionMiddleware 为每个请求确定会话 ID；缺失或非法时签发新的 UUID
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(h.cookie.Name)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(h.cookie.Name, id, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
