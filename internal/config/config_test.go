package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: "9090"
  mode: debug
backend:
  url: http://backend:8000/
  timeout_seconds: 5
grading:
  palette: [red, blue]
upload:
  format: CSV
storage:
  type: local
  local_path: ` + filepath.Join(dir, "exports") + `
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://backend:8000", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"red", "blue"}, cfg.Grading.Palette)
	assert.Equal(t, "white", cfg.Grading.DefaultColor)
	assert.Equal(t, "csv", cfg.Upload.Format)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 12*time.Hour, cfg.Session.ExpireTime)
	assert.DirExists(t, filepath.Join(dir, "exports"))
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Mode: "debug"},
			Backend: BackendConfig{URL: "http://localhost:8000"},
			Grading: GradingConfig{Palette: []string{"red"}},
			Upload:  UploadConfig{Format: "json"},
		}
	}
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "合法配置", mutate: func(c *Config) {}},
		{name: "缺少后端地址", mutate: func(c *Config) { c.Backend.URL = "" }, wantErr: true},
		{name: "不支持的上传格式", mutate: func(c *Config) { c.Upload.Format = "xml" }, wantErr: true},
		{name: "空调色板", mutate: func(c *Config) { c.Grading.Palette = nil }, wantErr: true},
		{name: "release 模式 secret 太短", mutate: func(c *Config) {
			c.Server.Mode = "release"
			c.Session.Secret = "short"
		}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
