package server

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motumbon/contratos/internal/api"
	"github.com/motumbon/contratos/internal/config"
	"github.com/motumbon/contratos/internal/importer"
	sessionstore "github.com/motumbon/contratos/internal/service/store"
	"github.com/motumbon/contratos/internal/store"
)

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
}

// NewServer 创建服务器；session.backend 为 sqlite 时会话与上传日志落盘
func NewServer(cfg *config.AppConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	opts, err := cfg.Business.ImporterOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid business config: %w", err)
	}
	coordinator := importer.NewCoordinator(opts, importer.NewSlogSink(logger))

	s := &Server{router: gin.New()}
	apiOpts := api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Cookie: api.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: int(cfg.SessionTTL().Seconds()),
			Secure: cfg.Session.Secure,
		},
		Logger: logger,
	}

	var sessions sessionstore.SessionStore
	switch cfg.Session.Backend {
	case config.SessionBackendSQLite:
		dataDir, err := config.EnsureDataDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		st, err := store.New(config.DBPath(dataDir, cfg), cfg.SessionTTL())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.store = st
		sessions = st
		apiOpts.Uploads = st
	default:
		sessions = sessionstore.NewMemoryStore(cfg.SessionTTL())
	}

	s.api = api.NewHandler(sessions, coordinator, apiOpts)
	s.setupRoutes(cfg.Server.AllowOrigin, devMode)
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(allowOrigin string, devMode bool) {
	s.router.Use(gin.Recovery())
	if devMode {
		s.router.Use(gin.Logger())
	}

	// CORS
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if allowOrigin != "*" {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// 首页
	sub, _ := fs.Sub(staticFiles, "dist")
	s.router.GET("/", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})

	s.api.RegisterRoutes(s.router)
}

// Handler 返回 http.Handler，供 http.Server 使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放存储
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
