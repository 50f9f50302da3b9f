package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/parser"
)

// 会话存储后端
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Session  SessionConfig  `toml:"session"`
	Business BusinessConfig `toml:"business"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int    `toml:"port"`
	DevMode     bool   `toml:"dev_mode"`
	MaxUploadMB int    `toml:"max_upload_mb"`
	AllowOrigin string `toml:"allow_origin"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	DBFile  string `toml:"db_file"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	Backend    string `toml:"backend"`
	TTLMinutes int    `toml:"ttl_minutes"`
	CookieName string `toml:"cookie_name"`
	Secure     bool   `toml:"secure"`
}

// BusinessConfig 业务配置：目标 Sheet、代表人、合同类型与识别阈值
type BusinessConfig struct {
	RequiredSheet         string              `toml:"required_sheet"`
	TargetRep             string              `toml:"target_rep"`
	ContractTypes         []string            `toml:"contract_types"`
	RepCandidates         []string            `toml:"rep_candidates"`
	FieldCandidates       map[string][]string `toml:"field_candidates"`
	ResolveStrategy       string              `toml:"resolve_strategy"`
	SheetCutoff           int                 `toml:"sheet_cutoff"`
	RepColumnCutoff       int                 `toml:"rep_column_cutoff"`
	FieldCutoff           int                 `toml:"field_cutoff"`
	RepThreshold          int                 `toml:"rep_threshold"`
	ContractTypeThreshold int                 `toml:"contract_type_threshold"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	fields := make(map[string][]string)
	for key, names := range parser.DefaultFieldCandidates() {
		fields[string(key)] = names
	}

	return &AppConfig{
		Server: ServerConfig{
			Port:        5000,
			DevMode:     false,
			MaxUploadMB: 20,
			AllowOrigin: "*",
		},
		Data: DataConfig{
			DataDir: "data",
			DBFile:  "contratos.db",
		},
		Session: SessionConfig{
			Backend:    SessionBackendMemory,
			TTLMinutes: 12 * 60,
			CookieName: "contratos_session",
		},
		Business: BusinessConfig{
			RequiredSheet:         importer.DefaultRequiredSheet,
			TargetRep:             importer.DefaultTargetRep,
			ContractTypes:         append([]string(nil), parser.DefaultContractTypes...),
			RepCandidates:         append([]string(nil), parser.DefaultRepCandidates...),
			FieldCandidates:       fields,
			ResolveStrategy:       "independent",
			SheetCutoff:           parser.DefaultSheetCutoff,
			RepColumnCutoff:       parser.DefaultRepColumnCutoff,
			FieldCutoff:           parser.DefaultFieldCutoff,
			RepThreshold:          parser.DefaultRepMatchThreshold,
			ContractTypeThreshold: parser.DefaultContractTypeMatchThreshold,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从默认路径加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(DefaultConfigPath())
}

// LoadConfigFrom 从指定路径加载配置；文件不存在时使用默认配置。环境变量最后覆盖
func LoadConfigFrom(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Found = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if applyEnv(config, os.Getenv) {
		info.PortSpecified = true
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖，返回端口是否被覆盖
func applyEnv(config *AppConfig, getenv func(string) string) bool {
	portSet := false
	if v := strings.TrimSpace(getenv("CONTRATOS_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			config.Server.Port = p
			portSet = true
		}
	}
	if v := strings.TrimSpace(getenv("CONTRATOS_SESSION_BACKEND")); v != "" {
		config.Session.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("CONTRATOS_DATA_DIR")); v != "" {
		config.Data.DataDir = v
	}
	return portSet
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid server.max_upload_mb %d", c.Server.MaxUploadMB)
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendSQLite:
	default:
		return fmt.Errorf("invalid session.backend %q", c.Session.Backend)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if _, err := parser.StrategyByName(c.Business.ResolveStrategy); err != nil {
		return err
	}
	for key := range c.Business.FieldCandidates {
		if !isDataKey(parser.CanonicalKey(key)) {
			return fmt.Errorf("unknown field_candidates key %q", key)
		}
	}
	return nil
}

func isDataKey(key parser.CanonicalKey) bool {
	for _, k := range parser.DataKeys {
		if k == key {
			return true
		}
	}
	return false
}

// MaxUploadBytes 上传大小上限（字节）
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// SessionTTL 会话有效期
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// ImporterOptions 把业务配置转换为上传处理选项
func (b BusinessConfig) ImporterOptions() (importer.Options, error) {
	strategy, err := parser.StrategyByName(b.ResolveStrategy)
	if err != nil {
		return importer.Options{}, err
	}

	var fields map[parser.CanonicalKey][]string
	if len(b.FieldCandidates) > 0 {
		fields = parser.DefaultFieldCandidates()
		for key, names := range b.FieldCandidates {
			fields[parser.CanonicalKey(key)] = names
		}
	}

	mapper := parser.NewFieldMapper(parser.FieldMapperOptions{
		RepCandidates:   b.RepCandidates,
		FieldCandidates: fields,
		RepCutoff:       b.RepColumnCutoff,
		FieldCutoff:     b.FieldCutoff,
		Strategy:        strategy,
	})

	return importer.Options{
		RequiredSheet:         b.RequiredSheet,
		TargetRep:             b.TargetRep,
		ContractTypes:         b.ContractTypes,
		SheetCutoff:           b.SheetCutoff,
		RepThreshold:          b.RepThreshold,
		ContractTypeThreshold: b.ContractTypeThreshold,
		FieldMapper:           mapper,
	}, nil
}

// EnsureDataDir 确保数据目录存在；相对路径基于可执行文件所在目录
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DBPath SQLite 文件路径
func DBPath(dataDir string, config *AppConfig) string {
	return filepath.Join(dataDir, config.Data.DBFile)
}
