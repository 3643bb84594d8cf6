// Package middleware holds the gin middleware shared by the routes.
package middleware

import (
	"net/http"

	"github.com/ehb/ragchat/web/entity"
	"github.com/ehb/ragchat/web/session"

	"github.com/gin-gonic/gin"
)

// LoginPath is where anonymous browser requests are sent.
const LoginPath = "/"

// LoginRequired aborts requests without a logged-in session. Browsers are
// redirected to the login page; XHR callers get a 401 JSON body.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if checkLogin(c) {
			c.Next()
		}
	}
}

// Protect wraps a single handler with the same check as LoginRequired.
func Protect(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checkLogin(c) {
			h(c)
		}
	}
}

func checkLogin(c *gin.Context) bool {
	if session.IsLogin(c) {
		return true
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Message: "Login required"})
	} else {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
	return false
}
