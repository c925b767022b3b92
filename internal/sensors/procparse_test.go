package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProcStat = `cpu  1000 0 1000 7000 1000 0 0 0 0 0
cpu0 500 0 500 3500 500 0 0 0 0 0
cpu1 500 0 500 3500 500 0 0 0 0 0
intr 12345
ctxt 67890
`

const testMeminfo = `MemTotal:       16000000 kB
MemFree:         4000000 kB
MemAvailable:    8000000 kB
Buffers:         1000000 kB
Cached:          3000000 kB
SwapTotal:       2000000 kB
SwapFree:        1500000 kB
`

const testNetDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo:    1000      10    0    0    0     0          0         0     1000      10    0    0    0     0       0          0
  eth0: 5000000    4000    0    0    0     0          0         0  2000000    3000    0    0    0     0       0          0
`

func TestParseCPUTimes(t *testing.T) {
	times, cores, err := parseCPUTimes(testProcStat)
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu0", "cpu1"}, cores)
	assert.Equal(t, cpuTimes{total: 10000, idle: 8000}, times["cpu"])
	assert.InDelta(t, 20.0, times["cpu"].usageSince(cpuTimes{}), 0.001)
}

func TestParseCPUTimes_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short line", "cpu  1 2 3"},
		{"bad number", "cpu  a b c d e"},
		{"no aggregate", "cpu0 1 2 3 4 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseCPUTimes(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestCPUTimes_UsageSince(t *testing.T) {
	prev := cpuTimes{total: 1000, idle: 900}
	cur := cpuTimes{total: 1100, idle: 950}
	assert.InDelta(t, 50.0, cur.usageSince(prev), 0.001)
	assert.Equal(t, 0.0, prev.usageSince(prev))
}

func TestParseLoadavg(t *testing.T) {
	load, err := parseLoadavg("1.23 2.34 3.45 1/234 5678\n")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1.23, 2.34, 3.45}, load)

	_, err = parseLoadavg("1.0 2.0")
	assert.Error(t, err)
	_, err = parseLoadavg("x 2.0 3.0")
	assert.Error(t, err)
}

func TestParseMeminfo(t *testing.T) {
	m, err := parseMeminfo(testMeminfo)
	require.NoError(t, err)
	assert.Equal(t, int64(16000000*1024), m.Total)
	assert.Equal(t, int64(8000000*1024), m.Used())
	assert.InDelta(t, 50.0, m.UsedPercent(), 0.001)
	assert.Equal(t, int64(500000*1024), m.SwapTotal-m.SwapFree)

	_, err = parseMeminfo("MemTotal: 100 kB\n")
	assert.Error(t, err)
}

func TestParseNetDev(t *testing.T) {
	ifaces, err := parseNetDev(testNetDev)
	require.NoError(t, err)
	require.Len(t, ifaces, 2)
	assert.Equal(t, netCounters{Name: "lo", RxBytes: 1000, TxBytes: 1000}, ifaces[0])
	assert.Equal(t, netCounters{Name: "eth0", RxBytes: 5000000, TxBytes: 2000000}, ifaces[1])
}

func TestParseUptime(t *testing.T) {
	secs, err := parseUptime("12345.67 54321.00\n")
	require.NoError(t, err)
	assert.InDelta(t, 12345.67, secs, 0.001)

	_, err = parseUptime("")
	assert.Error(t, err)
}

func TestParseMillidegrees(t *testing.T) {
	c, err := parseMillidegrees("45500\n")
	require.NoError(t, err)
	assert.InDelta(t, 45.5, c, 0.001)

	_, err = parseMillidegrees("hot")
	assert.Error(t, err)
}
