// Package web provides the HTTP server: routing, templates, static assets,
// session wiring and the background store check.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ehb/ragchat/config"
	"github.com/ehb/ragchat/database"
	"github.com/ehb/ragchat/logger"
	"github.com/ehb/ragchat/web/cache"
	"github.com/ehb/ragchat/web/controller"
	"github.com/ehb/ragchat/web/job"
	"github.com/ehb/ragchat/web/middleware"
	"github.com/ehb/ragchat/web/service"
	"github.com/ehb/ragchat/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/robfig/cron/v3"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

// App is the explicit application context handed to the router: every
// collaborator a handler needs is constructed once and passed in here.
type App struct {
	Config   *config.Config
	Users    controller.Authenticator
	Chat     controller.Chatter
	Sessions sessions.Store
}

// NewRouter builds the gin engine for app.
func NewRouter(app *App) (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID())

	if app.Config.WebDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(app.Config.WebDomain))
	}
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(sessions.Sessions(session.CookieName, app.Sessions))

	tpl, err := template.ParseFS(htmlFS, "html/*.html")
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return nil, err
	}
	engine.StaticFS("/assets", http.FS(assets))

	g := engine.Group("/")
	controller.NewIndexController(g, app.Users, app.Config.SessionMaxAge)
	controller.NewChatController(g, app.Chat)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// Server runs the web application and its background jobs.
type Server struct {
	cfg *config.Config

	httpServer *http.Server
	listener   net.Listener
	redis      *cache.Redis
	cron       *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server for cfg with a cancellable context.
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{cfg: cfg, ctx: ctx, cancel: cancel}
}

func (s *Server) newSessionStore() (sessions.Store, error) {
	r, err := cache.Open(s.ctx, s.cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	s.redis = r

	secret := []byte(s.cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warning("no session secret configured, sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}
	store := cache.NewRedisStore(r.Client(), secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge * 60,
		HttpOnly: true,
		Secure:   s.cfg.CertFile != "",
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// Start bootstraps the schema, builds the router and begins serving.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	open, dialect, err := database.NewOpener(&s.cfg.Database)
	if err != nil {
		return err
	}
	executor := database.NewExecutor(open, dialect)
	if err := database.InitSchema(s.ctx, executor); err != nil {
		return err
	}

	store, err := s.newSessionStore()
	if err != nil {
		return err
	}

	engine, err := NewRouter(&App{
		Config:   s.cfg,
		Users:    service.NewUserService(executor),
		Chat:     service.NewChatService(s.cfg.AI, s.cfg.Search),
		Sessions: store,
	})
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	if s.cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			_ = listener.Close()
			return err
		}
		listener = tls.NewListener(listener, &tls.Config{Certificates: []tls.Certificate{cert}})
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	return s.startTask(executor)
}

func (s *Server) startTask(executor *database.Executor) error {
	s.cron = cron.New()
	if _, err := s.cron.AddJob(s.cfg.StoreCheck, job.NewCheckStoreJob(executor)); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop shuts down the HTTP server, the cron scheduler and Redis.
func (s *Server) Stop() error {
	defer s.cancel()
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	var errs []error
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		defer cancel()
		errs = append(errs, s.httpServer.Shutdown(shutdownCtx))
	} else if s.listener != nil {
		errs = append(errs, s.listener.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
