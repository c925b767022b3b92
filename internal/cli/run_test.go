package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/sensors"
	sensorstest "github.com/rileyhilliard/sensdash/internal/sensors/testing"
	"github.com/rileyhilliard/sensdash/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/sensdash/pkg/sshutil/testing"
)

// stubSources swaps the local providers and remote dialer for fakes.
func stubSources(t *testing.T, local ...sensors.Provider) {
	t.Helper()
	origLocal, origDial := localProviders, remoteDialer
	t.Cleanup(func() { localProviders, remoteDialer = origLocal, origDial })
	localProviders = func() []sensors.Provider { return local }
	remoteDialer = func() sshutil.Dialer { return sshtesting.Dialer(nil) }
}

// useConfig writes cfg to a temp file and points --config at it.
func useConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensdash.yaml")
	require.NoError(t, config.Write(path, cfg))
	orig := cfgFile
	t.Cleanup(func() { cfgFile = orig })
	cfgFile = path
	return path
}

func TestLoadConfig_Overrides(t *testing.T) {
	useConfig(t, config.DefaultConfig())

	cfg, err := loadConfig(dashboardOptions{Timeout: time.Minute, SensorTimer: 3 * time.Second, ExplicitOnly: true})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 3*time.Second, cfg.SensorTimer)
	assert.True(t, cfg.StatusBarExplicitOnly)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Theme = "neon"
	useConfig(t, cfg)

	_, err := loadConfig(dashboardOptions{})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestOpenSources(t *testing.T) {
	stubSources(t, sensorstest.NewFakeProvider("fake", "a"))
	cfg := config.DefaultConfig()
	cfg.RemoteHosts = []string{"web1", "db"}

	src := openSources(cfg, logger.Noop())
	defer src.Close()

	require.Len(t, src.remotes, 2)
	assert.Equal(t, "web1", src.remotes[0].Family())
	assert.Equal(t, "db", src.remotes[1].Family())

	// Unreachable hosts are skipped when listing.
	paths := []string{}
	for _, d := range src.reg.Available() {
		paths = append(paths, d.Path())
	}
	assert.Equal(t, []string{"fake/a"}, paths)
}

func TestWatchAll(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Watches = []config.Watch{
		{Pattern: "fake/a", Period: 2 * time.Second},
		{Pattern: "missing/*"},
		{Pattern: "FAKE/b", CaseSensitive: true},
	}
	reg := sensors.NewRegistry(logger.Noop(), sensorstest.NewFakeProvider("fake", "a", "b", "c"))
	log := logger.NewBufferLogger()

	require.NoError(t, watchAll(reg, cfg, []string{"fake/c"}, log))

	reg.RLock()
	defer reg.RUnlock()
	w := reg.Watched()
	require.Len(t, w, 2)
	assert.Equal(t, "fake/a", w[0].Path())
	assert.Equal(t, 2*time.Second, w[0].Period())
	assert.Equal(t, "fake/c", w[1].Path())
	assert.Equal(t, cfg.SensorTimer, w[1].Period())
}

func TestWatchAll_BadFlagPattern(t *testing.T) {
	reg := sensors.NewRegistry(logger.Noop(), sensorstest.NewFakeProvider("fake", "a"))
	err := watchAll(reg, config.DefaultConfig(), []string{"fake/["}, logger.Noop())
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestRunDashboard_Console(t *testing.T) {
	fake := sensorstest.NewFakeProvider("fake", "a", "b")
	fake.Set("b", 2.5)
	stubSources(t, fake)

	cfg := config.DefaultConfig()
	cfg.Watches = []config.Watch{{Pattern: "fake"}}
	useConfig(t, cfg)

	var out bytes.Buffer
	err := runDashboard(context.Background(), dashboardOptions{Console: true, Timeout: 50 * time.Millisecond}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "fake/a  0\n")
	assert.Contains(t, out.String(), "fake/b  2.5\n")
}
