package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuilder_DotEnv(t *testing.T) {
	path := writeDotEnv(t, "SERVER__HOST=dotenv.local\nSERVER__PORT=6060\n# comment\nDATABASE__REPLICAS__0=\"postgres://env/app\"\n")

	cfg, err := NewBuilder().
		AddYAMLFile("testdata/app.yaml", false).
		AddDotEnv(false, path).
		Build()
	require.NoError(t, err)

	host, _ := cfg.Get("server:host")
	assert.Equal(t, "dotenv.local", host)

	port, _ := cfg.Get("Server:Port")
	assert.Equal(t, "6060", port)

	replica, _ := cfg.Get("database:replicas:0")
	assert.Equal(t, "postgres://env/app", replica)

	// Keys already present keep their spelling
	assert.Equal(t, "host", cfg.Section("SERVER:HOST").Key())
}

func TestBuilder_DotEnv_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	cfg, err := NewBuilder().AddDotEnv(true, missing).Build()
	require.NoError(t, err)
	assert.Empty(t, cfg.All())

	_, err = NewBuilder().AddDotEnv(false, missing).Build()
	assert.ErrorContains(t, err, "failed to read dotenv file")
}

func TestBuilder_DotEnv_LaterFileWins(t *testing.T) {
	first := writeDotEnv(t, "APP__NAME=first\nAPP__MODE=one\n")
	second := writeDotEnv(t, "APP__NAME=second\n")

	cfg, err := NewBuilder().AddDotEnv(false, first, second).Build()
	require.NoError(t, err)

	name, _ := cfg.Get("app:name")
	mode, _ := cfg.Get("app:mode")
	assert.Equal(t, "second", name)
	assert.Equal(t, "one", mode)
}

func TestBuilder_Env(t *testing.T) {
	t.Setenv("AWTEST_SERVER__PORT", "7070")
	t.Setenv("awtest_server__tls", "true")
	t.Setenv("OTHER_SERVER__PORT", "1")

	cfg, err := NewBuilder().
		AddYAMLFile("testdata/app.yaml", false).
		AddEnv("AWTEST_").
		Build()
	require.NoError(t, err)

	var server struct {
		Port int
		TLS  bool
	}
	require.NoError(t, cfg.Section("server").Bind(&server))
	assert.Equal(t, 7070, server.Port)
	assert.True(t, server.TLS)

	_, found := cfg.Get("other_server:port")
	assert.False(t, found)
}

func TestMergeEnv(t *testing.T) {
	root := newNode("")
	mergeEnv(root, map[string]string{
		"PFX_A__B": "1",
		"PFX_":     "ignored",
		"NOPE":     "ignored",
	}, "pfx_")

	cfg := &Config{root: root}
	assert.Equal(t, map[string]string{"a:b": "1"}, cfg.All())
}

func TestMergeEnv_CaseCollisionsAreOrdered(t *testing.T) {
	for i := 0; i < 20; i++ {
		root := newNode("")
		mergeEnv(root, map[string]string{
			"Db__Host": "lower",
			"DB__HOST": "upper",
			"dB__host": "mixed",
		}, "")

		cfg := &Config{root: root}
		host, _ := cfg.Get("db:host")
		// Sorted order is DB__HOST, Db__Host, dB__host.
		assert.Equal(t, "mixed", host)
		assert.Equal(t, "DB", cfg.Section("db").Key())
		assert.Equal(t, "HOST", cfg.Section("db:host").Key())
	}
}
