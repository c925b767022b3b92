package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	cfg := DefaultConfig()
	cfg.Timeout = 90 * time.Second
	cfg.RemoteHosts = []string{"web1", "db1"}
	cfg.Watches = append(cfg.Watches, Watch{Pattern: "net/eth0.*", Period: 5 * time.Second})

	require.NoError(t, Write(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sensor_timer: 1s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
	assert.Equal(t, cfg.RemoteHosts, loaded.RemoteHosts)
	assert.Equal(t, cfg.Watches, loaded.Watches)
}

func TestAppendWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `# my dashboard
version: 1
watches:
  - pattern: cpu/usage # the big one
theme: dark
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	added, err := AppendWatch(path, Watch{Pattern: "thermal/*", Period: 2 * time.Second})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = AppendWatch(path, Watch{Pattern: "cpu/usage"})
	require.NoError(t, err)
	assert.False(t, added, "duplicate pattern is left alone")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# my dashboard")
	assert.Contains(t, string(data), "# the big one")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Watches, 2)
	assert.Equal(t, Watch{Pattern: "thermal/*", Period: 2 * time.Second}, cfg.Watches[1])
	assert.Equal(t, ThemeDark, cfg.Theme)
}

func TestAppendWatch_NoWatchesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	added, err := AppendWatch(path, Watch{Pattern: "load/*"})
	require.NoError(t, err)
	assert.True(t, added)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Watch{{Pattern: "load/*"}}, cfg.Watches)
}

func TestAppendWatch_Errors(t *testing.T) {
	_, err := AppendWatch(filepath.Join(t.TempDir(), "missing.yaml"), Watch{Pattern: "x"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("watches: nope\n"), 0o644))
	_, err = AppendWatch(path, Watch{Pattern: "x"})
	assert.Error(t, err)
}
