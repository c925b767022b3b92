package sensors

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sensdash/pkg/sshutil"
)

// remoteCommand prints the three procfs files a remote family needs,
// separated so one round trip serves every sensor of the host.
const remoteCommand = "cat /proc/loadavg; echo " + remoteSeparator +
	"; cat /proc/meminfo; echo " + remoteSeparator + "; cat /proc/uptime"

const remoteSeparator = "--sensdash--"

// RemoteSnapshotAge is how long one remote read serves later reads of the
// same host.
const RemoteSnapshotAge = 500 * time.Millisecond

var remoteDescriptors = []struct {
	label, desc string
	unit        Unit
}{
	{"load1", "Load average over 1 min", UnitLoad},
	{"load5", "Load average over 5 min", UnitLoad},
	{"load15", "Load average over 15 min", UnitLoad},
	{"mem_used_pct", "Memory used, excluding cache", UnitPercent},
	{"mem_avail", "Memory available to new programs", UnitBytes},
	{"uptime", "Time since boot", UnitSeconds},
}

type remoteSnapshot struct {
	load   [3]float64
	mem    memInfo
	uptime float64
}

// RemoteProvider exposes a host reached over SSH as a family named after
// its alias. The connection is dialed lazily and redialed after a failure.
type RemoteProvider struct {
	host string
	dial sshutil.Dialer
	now  func() time.Time

	mu     sync.Mutex
	runner sshutil.Runner
	snap   remoteSnapshot
	taken  time.Time
}

// NewRemoteProvider creates the family for host. now defaults to time.Now.
func NewRemoteProvider(host string, dial sshutil.Dialer, now func() time.Time) *RemoteProvider {
	if now == nil {
		now = time.Now
	}
	return &RemoteProvider{host: host, dial: dial, now: now}
}

func (p *RemoteProvider) Family() string { return p.host }

func (p *RemoteProvider) Sensors() ([]Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.snapshot(); err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(remoteDescriptors))
	for _, d := range remoteDescriptors {
		out = append(out, Descriptor{Family: p.host, Label: d.label,
			Description: d.desc + " on " + p.host, Unit: d.unit})
	}
	return out, nil
}

func (p *RemoteProvider) Read(label string) (Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.snapshot()
	if err != nil {
		return Value{}, err
	}
	switch label {
	case "load1":
		return Number(s.load[0], UnitLoad), nil
	case "load5":
		return Number(s.load[1], UnitLoad), nil
	case "load15":
		return Number(s.load[2], UnitLoad), nil
	case "mem_used_pct":
		return Number(s.mem.UsedPercent(), UnitPercent), nil
	case "mem_avail":
		return Number(float64(s.mem.Available), UnitBytes), nil
	case "uptime":
		return Number(float64(int64(s.uptime)), UnitSeconds), nil
	}
	return Value{}, fmt.Errorf("unknown %s sensor %q", p.host, label)
}

// Close drops the connection, if any.
func (p *RemoteProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.runner == nil {
		return nil
	}
	err := p.runner.Close()
	p.runner = nil
	return err
}

// snapshot returns a cached reading younger than RemoteSnapshotAge or takes
// a new one. Caller holds p.mu.
func (p *RemoteProvider) snapshot() (remoteSnapshot, error) {
	now := p.now()
	if !p.taken.IsZero() && now.Sub(p.taken) < RemoteSnapshotAge {
		return p.snap, nil
	}
	if p.runner == nil {
		r, err := p.dial(p.host)
		if err != nil {
			return remoteSnapshot{}, err
		}
		p.runner = r
	}
	out, err := p.runner.Output(remoteCommand)
	if err != nil {
		_ = p.runner.Close()
		p.runner = nil
		return remoteSnapshot{}, err
	}
	s, err := parseRemote(string(out))
	if err != nil {
		return remoteSnapshot{}, err
	}
	p.snap, p.taken = s, now
	return s, nil
}

func parseRemote(out string) (remoteSnapshot, error) {
	var s remoteSnapshot
	parts := strings.Split(out, remoteSeparator+"\n")
	if len(parts) != 3 {
		return s, fmt.Errorf("unexpected remote output: %d sections", len(parts))
	}
	var err error
	if s.load, err = parseLoadavg(parts[0]); err != nil {
		return s, err
	}
	if s.mem, err = parseMeminfo(parts[1]); err != nil {
		return s, err
	}
	if s.uptime, err = parseUptime(parts[2]); err != nil {
		return s, err
	}
	return s, nil
}
