package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/motumbon/contratos/internal/api"
	"github.com/motumbon/contratos/internal/config"
	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/server"
	"github.com/motumbon/contratos/internal/service/calculator"
	"github.com/motumbon/contratos/internal/util"
)

var (
	port        = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode     = flag.Bool("dev", false, "开发模式")
	dataDir     = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	configPath  = flag.String("config", "", "配置文件路径 (默认可执行文件目录下 config.toml)")
	openBrowser = flag.Bool("open", false, "启动后打开浏览器")
	analyze     = flag.String("analyze", "", "离线分析一个 Excel 文件并输出 JSON，不启动服务")
	writeConfig = flag.String("write-config", "", "把当前生效配置写到指定路径后退出")
	sample      = flag.String("sample", "", "生成示例 Excel 到指定路径后退出")
)

func main() {
	flag.Parse()

	// 加载配置
	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, info, err := config.LoadConfigFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	logger := newLogger(cfg.Server.DevMode)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("配置无效", "path", info.Path, "error", err)
		os.Exit(1)
	}

	switch {
	case *writeConfig != "":
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			logger.Error("写入配置失败", "path", *writeConfig, "error", err)
			os.Exit(1)
		}
		fmt.Printf("配置已写入: %s\n", *writeConfig)
		return
	case *sample != "":
		if err := writeSample(*sample, time.Now()); err != nil {
			logger.Error("生成示例失败", "path", *sample, "error", err)
			os.Exit(1)
		}
		fmt.Printf("示例已写入: %s\n", *sample)
		return
	case *analyze != "":
		if err := runAnalyze(cfg, logger, *analyze); err != nil {
			logger.Error("分析失败", "file", *analyze, "error", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(cfg, logger); err != nil {
		logger.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}

func newLogger(dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

func serve(cfg *config.AppConfig, logger *slog.Logger) error {
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动", "addr", addr, "session_backend", cfg.Session.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if *openBrowser && !cfg.Server.DevMode {
		if err := util.OpenBrowser(url); err != nil {
			logger.Warn("无法自动打开浏览器，请手动访问", "url", url, "error", err)
		}
	} else {
		logger.Info("请访问", "url", url)
	}

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	logger.Info("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// analyzeOutput -analyze 输出
type analyzeOutput struct {
	File    string              `json:"file"`
	Result  *importer.Result    `json:"result,omitempty"`
	Summary *api.UploadResponse `json:"summary,omitempty"`
	Error   *api.ErrorResponse  `json:"error,omitempty"`
}

func runAnalyze(cfg *config.AppConfig, logger *slog.Logger, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	opts, err := cfg.Business.ImporterOptions()
	if err != nil {
		return err
	}

	coordinator := importer.NewCoordinator(opts, importer.NewSlogSink(logger))
	out := analyzeOutput{File: file}
	res, err := coordinator.Process(context.Background(), importer.Upload{Filename: filepath.Base(file), Data: data})
	if err != nil {
		var e *importer.Error
		if !errors.As(err, &e) {
			e = importer.InternalError(err)
		}
		out.Error = &api.ErrorResponse{Error: e.Message, Kind: e.Kind}
	} else {
		summary := api.BuildUploadResponse(calculator.NewEngine(nil), res.Set.Records)
		out.Result = res
		out.Summary = &summary
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
