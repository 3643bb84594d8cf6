package middleware

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/ehb/ragchat/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(sessions.Sessions(session.CookieName, cookie.NewStore([]byte("test-secret-test-secret-test-sec"))))
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "login") })
	engine.GET("/signin", func(c *gin.Context) {
		if err := session.SetLoginUser(c, "alice"); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	engine.GET("/page", Protect(func(c *gin.Context) { c.String(http.StatusOK, "page") }))

	api := engine.Group("/api", LoginRequired())
	api.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, session.GetLoginUser(c)) })

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, url string, xhr bool) (int, string, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if xhr {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func TestLoginRequired(t *testing.T) {
	srv, client := newAuthServer(t)

	tests := []struct {
		name     string
		path     string
		xhr      bool
		status   int
		location string
		body     string
	}{
		{"group redirects browser", "/api/me", false, http.StatusFound, LoginPath, ""},
		{"group rejects xhr", "/api/me", true, http.StatusUnauthorized, "", `{"message":"Login required"}`},
		{"wrapped handler redirects browser", "/page", false, http.StatusFound, LoginPath, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, location, body := get(t, client, srv.URL+tt.path, tt.xhr)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.location, location)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, body)
			}
		})
	}
}

func TestLoginRequiredPassesLoggedInSession(t *testing.T) {
	srv, client := newAuthServer(t)

	status, _, _ := get(t, client, srv.URL+"/signin", false)
	require.Equal(t, http.StatusNoContent, status)

	status, _, body := get(t, client, srv.URL+"/api/me", false)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body)

	status, _, body = get(t, client, srv.URL+"/page", true)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "page", body)
}
