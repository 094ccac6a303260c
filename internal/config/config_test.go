package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BUGTRAIL_CONFIG_PATH",
		"BUGTRAIL_DB_PATH",
		"BUGTRAIL_LOG_LEVEL",
		"BUGTRAIL_LOG_PATH",
		"BUGTRAIL_EXPORT_DIR",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, ".", cfg.Export.Dir)
	require.Equal(t, "bugtrail.db", filepath.Base(cfg.DB.Path))
	require.Empty(t, cfg.Log.Path)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bugtrail.yaml", `
db:
  path: /tmp/bt.db
log:
  level: debug
export:
  dir: /tmp/exports
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/bt.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/exports", cfg.Export.Dir)
}

func TestLoadTOMLFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bugtrail.toml", `
[db]
path = "/var/lib/bt.db"

[log]
level = "warn"
path = "/var/log/bt.log"
`)
	t.Setenv("BUGTRAIL_CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/var/lib/bt.db", cfg.DB.Path)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "/var/log/bt.log", cfg.Log.Path)
	require.Equal(t, ".", cfg.Export.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bugtrail.yaml", "db:\n  path: file.db\nlog:\n  level: debug\n")
	t.Setenv("BUGTRAIL_DB_PATH", ":memory:")
	t.Setenv("BUGTRAIL_LOG_LEVEL", "error")
	t.Setenv("BUGTRAIL_EXPORT_DIR", "out")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":memory:", cfg.DB.Path)
	require.Equal(t, "error", cfg.Log.Level)
	require.Equal(t, "out", cfg.Export.Dir)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config file")

	_, err = Load(writeFile(t, "bad.toml", "[db\npath="))
	require.ErrorContains(t, err, "parse config file")

	t.Setenv("BUGTRAIL_LOG_LEVEL", "loud")
	_, err = Load("")
	require.ErrorContains(t, err, "invalid log.level")
}
