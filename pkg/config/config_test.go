package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: "cartsync"
paths:
  picklist_dir: "./data/picklists"
dxm:
  base_url: "https://www.dianxiaomi.com"
ali:
  cart_url: "https://cart.1688.com/data/add_to_cart_list_new.jsx"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cartsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 300, cfg.Dxm.PageSize)
	assert.Equal(t, 2*time.Second, cfg.Dxm.PollInterval)
	assert.Equal(t, 20, cfg.Dxm.PollMaxTries)
	assert.Equal(t, "DXM_COOKIE", cfg.Dxm.CookieEnv)
	assert.Equal(t, "ALI_COOKIE", cfg.Ali.CookieEnv)
	assert.Equal(t, 100*time.Millisecond, cfg.Ali.PaceMinDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.Ali.PaceMaxDelay)

	// 不可逆操作默认关闭
	assert.False(t, cfg.Toggles.EnableAudit)
	assert.False(t, cfg.Toggles.EnableAddToCart)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  name: "cartsync"
`))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestValidateOptionalInfra(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+`
mysql:
  enabled: true
`))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "开启 mysql 必须给 dsn")

	cfg, err = Load(writeConfig(t, minimalYAML+`
redis:
  enabled: true
`))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "开启 redis 必须给 addr")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
