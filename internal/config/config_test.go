package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "soen287project", cfg.Database.Name)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, UploadLocal, cfg.Uploads.Backend)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: 127.0.0.1:9000
  read_timeout: 3s
database:
  driver: memory
  name: fromyaml
uploads:
  dir: /tmp/logos
`), 0o600))

	t.Setenv("MONGO_DB", "fromenv")
	t.Setenv("LOGIN_PER_MINUTE", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "fromenv", cfg.Database.Name)
	assert.Equal(t, "/tmp/logos", cfg.Uploads.Dir)
	assert.Equal(t, 5, cfg.Security.LoginPerMinute)
}

func TestLoad_PortAndLogFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_FILE", "out.log")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8081", cfg.Server.Addr)
	assert.True(t, cfg.Logger.FileEnable)
	assert.Equal(t, "out.log", cfg.Logger.Filename)
}

func TestLoad_BadRateLimit(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LOGIN_PER_MINUTE", "lots")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"unknown driver", func(c *AppConfig) { c.Database.Driver = "sqlite" }},
		{"mongo without uri", func(c *AppConfig) { c.Database.URI = "" }},
		{"unknown backend", func(c *AppConfig) { c.Uploads.Backend = "ftp" }},
		{"s3 without bucket", func(c *AppConfig) { c.Uploads.Backend = UploadS3 }},
		{"no secret", func(c *AppConfig) { c.Session.Secret = "" }},
		{"no admin password", func(c *AppConfig) { c.Admin.Password = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
