package sensors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/rileyhilliard/sensdash/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/sensdash/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRemoteOutput = "0.10 0.20 0.30 1/99 42\n" + remoteSeparator + "\n" +
	testMeminfo + remoteSeparator + "\n" + "3661.2 10.0\n"

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRemoteProvider_Read(t *testing.T) {
	runner := sshtesting.NewMockRunner("web1")
	runner.SetOutput(remoteCommand, testRemoteOutput)
	clock := &fakeClock{t: time.Now()}
	p := NewRemoteProvider("web1", sshtesting.Dialer(map[string]*sshtesting.MockRunner{"web1": runner}), clock.now)

	ds, err := p.Sensors()
	require.NoError(t, err)
	require.Len(t, ds, 6)
	assert.Equal(t, "web1/load1", ds[0].Path())

	tests := []struct{ label, want string }{
		{"load1", "0.10"},
		{"load15", "0.30"},
		{"mem_used_pct", "50.0%"},
		{"mem_avail", "7.6 GiB"},
		{"uptime", "01:01:01"},
	}
	for _, tt := range tests {
		v, err := p.Read(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.String(), tt.label)
	}
	assert.Len(t, runner.Calls(), 1, "reads within the snapshot age share one round trip")

	clock.t = clock.t.Add(RemoteSnapshotAge)
	_, err = p.Read("load5")
	require.NoError(t, err)
	assert.Len(t, runner.Calls(), 2)

	_, err = p.Read("nope")
	assert.Error(t, err)
}

func TestRemoteProvider_RedialsAfterFailure(t *testing.T) {
	var runners []*sshtesting.MockRunner
	dial := func(host string) (sshutil.Runner, error) {
		r := sshtesting.NewMockRunner(host)
		if len(runners) == 0 {
			r.SetError(remoteCommand, stderrors.New("broken pipe"))
		} else {
			r.SetOutput(remoteCommand, testRemoteOutput)
		}
		runners = append(runners, r)
		return r, nil
	}
	p := NewRemoteProvider("web1", dial, nil)

	_, err := p.Read("load1")
	assert.Error(t, err)
	require.Len(t, runners, 1)
	assert.True(t, runners[0].Closed())

	_, err = p.Read("load1")
	require.NoError(t, err)
	assert.Len(t, runners, 2)

	require.NoError(t, p.Close())
	assert.True(t, runners[1].Closed())
}

func TestRemoteProvider_UnreachableHost(t *testing.T) {
	p := NewRemoteProvider("ghost", sshtesting.Dialer(nil), nil)
	_, err := p.Sensors()
	assert.Error(t, err)
	assert.NoError(t, p.Close())
}

func TestParseRemote_BadOutput(t *testing.T) {
	_, err := parseRemote("garbage")
	assert.Error(t, err)
}
