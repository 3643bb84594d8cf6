package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ehb/ragchat/logger"
	"github.com/ehb/ragchat/web/entity"
	"github.com/ehb/ragchat/web/middleware"
	"github.com/ehb/ragchat/web/service"
	"github.com/ehb/ragchat/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles the login, registration, logout and index routes.
type IndexController struct {
	users         Authenticator
	sessionMaxAge int
}

// NewIndexController creates an IndexController and registers its routes.
// sessionMaxAge is in minutes; zero keeps the cookie for the browser session.
func NewIndexController(g *gin.RouterGroup, users Authenticator, sessionMaxAge int) *IndexController {
	a := &IndexController{users: users, sessionMaxAge: sessionMaxAge}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.loginPage)
	g.GET("/register", a.registerPage)
	g.POST("/register", a.register)
	g.POST("/login", a.login)
	g.GET("/logout", a.logout)
	g.GET("/index", middleware.Protect(a.index))
}

func (a *IndexController) loginPage(c *gin.Context) {
	html(c, "login.html", "Login", nil)
}

func (a *IndexController) registerPage(c *gin.Context) {
	html(c, "register.html", "Register", nil)
}

func (a *IndexController) index(c *gin.Context) {
	html(c, "index.html", "Chat", gin.H{"username": session.GetLoginUser(c)})
}

func (a *IndexController) register(c *gin.Context) {
	var form entity.CredentialsForm
	if err := c.ShouldBindJSON(&form); err != nil || strings.TrimSpace(form.Username) == "" {
		jsonMsg(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	err := a.users.Register(c.Request.Context(), form.Username, form.Password)
	switch {
	case err == nil:
		logger.Infof("registered user %q, IP: %s", form.Username, getRemoteIp(c))
		jsonMsg(c, http.StatusOK, msgRegistrationOK)
	case errors.Is(err, service.ErrDuplicateUsername):
		jsonMsg(c, http.StatusBadRequest, msgUsernameExists)
	case errors.Is(err, service.ErrPasswordTooLong):
		jsonMsg(c, http.StatusBadRequest, msgPasswordTooLong)
	default:
		logger.Errorf("error during registration [%s]: %v", middleware.GetRequestID(c), err)
		jsonMsg(c, http.StatusInternalServerError, msgRegistrationError)
	}
}

func (a *IndexController) login(c *gin.Context) {
	var form entity.CredentialsForm
	if err := c.ShouldBindJSON(&form); err != nil {
		jsonMsg(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	logger.Debugf("login attempt for user %q", form.Username)
	user, err := a.users.CheckUser(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Warningf("login failed for user %q, IP: %s", form.Username, getRemoteIp(c))
		jsonMsg(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		logger.Errorf("error during login [%s]: %v", middleware.GetRequestID(c), err)
		jsonMsg(c, http.StatusInternalServerError, msgLoginError)
		return
	}

	session.SetMaxAge(c, a.sessionMaxAge*60)
	if err := session.SetLoginUser(c, user.Username); err != nil {
		logger.Errorf("unable to save session [%s]: %v", middleware.GetRequestID(c), err)
		jsonMsg(c, http.StatusInternalServerError, msgLoginError)
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", user.Username, getRemoteIp(c))
	jsonMsg(c, http.StatusOK, msgLoginOK)
}

func (a *IndexController) logout(c *gin.Context) {
	if username := session.GetLoginUser(c); username != "" {
		logger.Infof("%s logged out successfully", username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
