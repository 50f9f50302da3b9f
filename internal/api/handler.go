package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/service/calculator"
	sessionstore "github.com/motumbon/contratos/internal/service/store"
)

// DefaultMaxUploadBytes 默认上传上限 20MB
const DefaultMaxUploadBytes int64 = 20 << 20

// UploadLogger 上传日志（可选，SQLite 后端提供）
type UploadLogger interface {
	CreateUploadLog(ctx context.Context, sessionID, filename string, fileSize int64, fileHash string) (int64, error)
	FinishUploadLog(ctx context.Context, id int64, status, kind, errorMessage string, recordCount int) error
	ListUploadLogs(ctx context.Context, sessionID string, limit int) ([]model.UploadLog, error)
}

// Options Handler 选项
type Options struct {
	MaxUploadBytes int64
	Cookie         CookieOptions
	Uploads        UploadLogger
	Logger         *slog.Logger
	Now            func() time.Time
}

// Handler HTTP 处理器
type Handler struct {
	sessions    sessionstore.SessionStore
	coordinator *importer.Coordinator
	engine      *calculator.Engine
	uploads     UploadLogger
	maxUpload   int64
	cookie      CookieOptions
	logger      *slog.Logger
}

// NewHandler 创建处理器
func NewHandler(sessions sessionstore.SessionStore, coordinator *importer.Coordinator, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = DefaultCookieName
	}
	return &Handler{
		sessions:    sessions,
		coordinator: coordinator,
		engine:      calculator.NewEngine(opts.Now),
		uploads:     opts.Uploads,
		maxUpload:   opts.MaxUploadBytes,
		cookie:      opts.Cookie,
		logger:      opts.Logger,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.Use(h.SessionMiddleware())

	// 上传与查询
	router.POST("/upload", h.Upload)
	router.GET("/data", h.GetData)
	router.DELETE("/data", h.DeleteData)
	router.GET("/export", h.Export)

	// 状态
	api := router.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/uploads", h.ListUploads)
}
