// Package session stores the login state of a client in its server-side session.
package session

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the name of the cookie carrying the opaque session id.
	CookieName = "ragchat"

	usernameKey = "username"
	loggedInKey = "logged_in"
)

// SetLoginUser marks the session as logged in for username.
func SetLoginUser(c *gin.Context, username string) error {
	s := sessions.Default(c)
	s.Set(usernameKey, username)
	s.Set(loggedInKey, true)
	return s.Save()
}

// SetMaxAge sets the cookie lifetime in seconds; zero keeps it for the browser session.
func SetMaxAge(c *gin.Context, maxAge int) {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLoginUser returns the logged-in username, or "" for an anonymous session.
func GetLoginUser(c *gin.Context) string {
	s := sessions.Default(c)
	loggedIn, _ := s.Get(loggedInKey).(bool)
	username, _ := s.Get(usernameKey).(string)
	if !loggedIn || username == "" {
		return ""
	}
	return username
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != ""
}

// ClearSession drops all session values and expires the cookie.
// Clearing an anonymous session is a no-op apart from the cookie.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
