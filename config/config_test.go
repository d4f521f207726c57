package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/dialect"
	"github.com/shrek82/namedsql/logger"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sample = `
log:
  level: info
  format: json
slow_threshold: 250ms
slow_log: /tmp/slow.log
redis:
  addr: localhost:6379
pool:
  max_idle_conns: 2
  connect_timeout: 3s
connections:
  - name: ""
    driver: sqlite
  - name: reports
    driver: QPSQL
    host: db.internal
    port: 5432
    database: reports
    user: ann
    password: secret
    params:
      sslmode: require
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "namedsql.yaml", sample))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LogLevel != logger.LogLevelInfo || cfg.LogFormat != logger.LogFormatJSON {
		t.Errorf("log settings = %v %v", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.SlowThreshold != 250*time.Millisecond || cfg.SlowLogPath != "/tmp/slow.log" {
		t.Errorf("slow log = %v %q", cfg.SlowThreshold, cfg.SlowLogPath)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisChannel != "namedsql:events" {
		t.Errorf("redis = %q %q", cfg.RedisAddr, cfg.RedisChannel)
	}
	if cfg.Pool.MaxIdleConns != 2 || cfg.Pool.ConnectTimeout != 3*time.Second {
		t.Errorf("pool = %+v", cfg.Pool)
	}

	if len(cfg.Connections) != 2 {
		t.Fatalf("got %d connections", len(cfg.Connections))
	}
	def, ok := cfg.Connection(core.DefaultConnection)
	if !ok || def.Driver != dialect.SQLite {
		t.Errorf("default connection = %+v, %v", def, ok)
	}
	rep, ok := cfg.Connection("reports")
	if !ok {
		t.Fatal("reports connection missing")
	}
	want := core.ConnectionConfig{
		Name:         "reports",
		Driver:       dialect.Postgres,
		Host:         "db.internal",
		Port:         5432,
		DatabaseName: "reports",
		User:         "ann",
		Password:     "secret",
		Params:       map[string]string{"sslmode": "require"},
	}
	if !reflect.DeepEqual(rep, want) {
		t.Errorf("reports = %+v\nwant %+v", rep, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NAMEDSQL_LOG_LEVEL", "error")
	t.Setenv("NAMEDSQL_REDIS_CHANNEL", "custom")

	cfg, err := Load(writeConfig(t, "namedsql.yaml", sample))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != logger.LogLevelError || cfg.RedisChannel != "custom" {
		t.Errorf("env not applied: %v %q", cfg.LogLevel, cfg.RedisChannel)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "namedsql.json", `{"connections": [{"name": "m", "driver": "mysql", "host": "h"}]}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := cfg.Connection("m"); !ok || c.Driver != dialect.MySql {
		t.Errorf("got %+v, %v", c, ok)
	}
	if cfg.LogLevel != logger.LogLevelWarn {
		t.Errorf("default log level = %v", cfg.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		path := writeConfig(t, "c.yaml", "connections:\n  - name: x\n    driver: mongodb\n")
		if _, err := Load(path); !errors.Is(err, dialect.ErrUnsupportedDriver) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("DuplicateName", func(t *testing.T) {
		path := writeConfig(t, "c.yaml", "connections:\n  - name: x\n    driver: sqlite\n  - name: x\n    driver: sqlite\n")
		if _, err := Load(path); !errors.Is(err, core.ErrInvalidConfig) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("InvalidPort", func(t *testing.T) {
		path := writeConfig(t, "c.yaml", "connections:\n  - name: x\n    driver: postgres\n    port: 99999\n")
		if _, err := Load(path); !errors.Is(err, core.ErrInvalidConfig) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("FirebirdWithoutDatabase", func(t *testing.T) {
		path := writeConfig(t, "c.yaml", "connections:\n  - name: fb\n    driver: firebird\n    host: fb.local\n")
		if _, err := Load(path); !errors.Is(err, core.ErrInvalidConfig) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("UnknownSSLMode", func(t *testing.T) {
		path := writeConfig(t, "c.yaml", "connections:\n  - name: pg\n    driver: postgres\n    params:\n      sslmode: sometimes\n")
		if _, err := Load(path); !errors.Is(err, core.ErrInvalidConfig) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("BadLogFormat", func(t *testing.T) {
		path := writeConfig(t, "c.yaml", "log:\n  format: xml\n")
		if _, err := Load(path); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLoadWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if len(cfg.Connections) != 0 || cfg.Pool.ConnectTimeout != 10*time.Second {
		t.Errorf("got %+v", cfg)
	}
}
