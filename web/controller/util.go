package controller

import (
	"net"
	"net/http"
	"strings"

	"github.com/ehb/ragchat/config"
	"github.com/ehb/ragchat/web/entity"
	"github.com/ehb/ragchat/web/middleware"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// jsonMsg writes {"message": msg} with status.
func jsonMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, entity.Msg{Message: msg})
}

// html renders an HTML template with the common page data.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["cur_ver"] = config.GetVersion()
	data["request_id"] = middleware.GetRequestID(c)
	c.HTML(http.StatusOK, name, data)
}
