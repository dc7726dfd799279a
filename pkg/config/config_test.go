package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/slidetype/pkg/cache"
	"github.com/matzehuels/slidetype/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Canvas.Width != 1080 || cfg.Canvas.Height != 1350 {
		t.Errorf("canvas = %+v", cfg.Canvas)
	}
	if cfg.Server.MaxUploadBytes() != 20<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.Server.MaxUploadBytes())
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[canvas]
width = 1080
height = 1080

[fonts]
dirs = ["/opt/fonts"]
default_family = "Montserrat"
builtin = false

[cache]
backend = "redis"
ttl = "36h"
redis_addr = "cache:6379"

[batch]
concurrency = 8
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Canvas.Height != 1080 {
		t.Errorf("height = %d", cfg.Canvas.Height)
	}
	if !reflect.DeepEqual(cfg.Fonts.Dirs, []string{"/opt/fonts"}) || cfg.Fonts.DefaultFamily != "Montserrat" || cfg.Fonts.Builtin {
		t.Errorf("fonts = %+v", cfg.Fonts)
	}
	if len(cfg.Fonts.SystemFallbacks) == 0 {
		t.Error("unset system_fallbacks lost their default")
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	want := cache.Options{Backend: "redis", RedisAddr: "cache:6379"}
	if got := cfg.Cache.Options(); got != want {
		t.Errorf("cache options = %+v, want %+v", got, want)
	}
	if cfg.Server != Default().Server {
		t.Errorf("unset server section = %+v", cfg.Server)
	}
	if cfg.Batch.Concurrency != 8 {
		t.Errorf("concurrency = %d", cfg.Batch.Concurrency)
	}
	if n := len(cfg.Fonts.ProviderOptions()); n != 2 {
		t.Errorf("provider options = %d, want fallbacks + no builtin", n)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[canvas`},
		{"unknown key", "[canvas]\ndepth = 3"},
		{"unknown section", "[colour]\nfill = 1"},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"negative ttl", "[cache]\nttl = \"-1h\""},
		{"zero width", "[canvas]\nwidth = 0"},
		{"huge canvas", "[canvas]\nheight = 100000"},
		{"backend", "[cache]\nbackend = \"memcached\""},
		{"blank family", "[fonts]\ndefault_family = \" \""},
		{"concurrency", "[batch]\nconcurrency = 0"},
		{"upload", "[server]\nmax_upload_mb = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("missing file did not yield defaults")
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	got := expandHome([]string{"~/fonts", "/abs", "rel/~x"})
	want := []string{"/home/tester/fonts", "/abs", "rel/~x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandHome = %v, want %v", got, want)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != "/tmp/xdg/slidetype/config.toml" {
		t.Errorf("DefaultPath = %q", got)
	}
}
