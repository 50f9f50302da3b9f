package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/motumbon/contratos/internal/parser"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Business.RequiredSheet != "DDBB" || c.Business.TargetRep != "PABLO YEVENES" {
		t.Fatalf("unexpected business defaults: %+v", c.Business)
	}
	if c.MaxUploadBytes() != 20<<20 {
		t.Fatalf("unexpected upload limit: %d", c.MaxUploadBytes())
	}
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	c, info, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.Found || c.Server.Port != DefaultConfig().Server.Port {
		t.Fatalf("unexpected result: info=%+v port=%d", info, c.Server.Port)
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 8088
max_upload_mb = 5

[session]
backend = "sqlite"

[business]
target_rep = "ANA ROJAS"
resolve_strategy = "exclusive"

[business.field_candidates]
fin_validez = ["Vence"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, info, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.Found || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if c.Server.Port != 8088 || c.Server.MaxUploadMB != 5 || c.Session.Backend != SessionBackendSQLite {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.Session.CookieName != "contratos_session" {
		t.Fatalf("unset keys should keep defaults, got %q", c.Session.CookieName)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	opts, err := c.Business.ImporterOptions()
	if err != nil {
		t.Fatalf("importer options: %v", err)
	}
	if opts.TargetRep != "ANA ROJAS" || opts.FieldMapper.Strategy().Name() != "exclusive" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	res := opts.FieldMapper.Map([]string{"Vence", "Pedido"})
	if h, _ := res.Mapping.Header(parser.KeyFinValidez); h != "Vence" {
		t.Fatalf("custom synonym not applied: %q", h)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	c := DefaultConfig()
	env := map[string]string{
		"CONTRATOS_PORT":            "7000",
		"CONTRATOS_SESSION_BACKEND": "SQLITE",
		"CONTRATOS_DATA_DIR":        "/tmp/contratos",
	}
	if !applyEnv(c, func(k string) string { return env[k] }) {
		t.Fatalf("port override should be reported")
	}
	if c.Server.Port != 7000 || c.Session.Backend != SessionBackendSQLite || c.Data.DataDir != "/tmp/contratos" {
		t.Fatalf("unexpected config: %+v", c)
	}

	c = DefaultConfig()
	if applyEnv(c, func(k string) string { return map[string]string{"CONTRATOS_PORT": "abc"}[k] }) {
		t.Fatalf("invalid port must be ignored")
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*AppConfig){
		"port":     func(c *AppConfig) { c.Server.Port = 0 },
		"upload":   func(c *AppConfig) { c.Server.MaxUploadMB = 0 },
		"backend":  func(c *AppConfig) { c.Session.Backend = "redis" },
		"cookie":   func(c *AppConfig) { c.Session.CookieName = "" },
		"strategy": func(c *AppConfig) { c.Business.ResolveStrategy = "hungarian" },
		"field":    func(c *AppConfig) { c.Business.FieldCandidates = map[string][]string{"monto": {"Monto"}} },
	}
	for name, mutate := range cases {
		c := DefaultConfig()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	c := DefaultConfig()
	c.Server.Port = 9001
	if err := SaveConfig(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Port != 9001 || len(loaded.Business.ContractTypes) != len(c.Business.ContractTypes) {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}
