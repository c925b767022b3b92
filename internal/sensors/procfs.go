package sensors

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DefaultProcRoot and DefaultSysRoot are where the local families read from.
const (
	DefaultProcRoot = "/proc"
	DefaultSysRoot  = "/sys"
)

// LocalProviders returns the families read from this machine's procfs and
// sysfs. Tests point the roots at a temp dir.
func LocalProviders(procRoot, sysRoot string) []Provider {
	proc := fileRoot(procRoot)
	return []Provider{
		&cpuProvider{root: proc},
		&loadProvider{root: proc},
		&memProvider{root: proc},
		&netProvider{root: proc},
		&uptimeProvider{root: proc},
		&thermalProvider{root: fileRoot(sysRoot)},
	}
}

type fileRoot string

func (r fileRoot) read(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(string(r), rel))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// familyChanged wraps ErrFamilyChanged with what changed.
func familyChanged(family, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrFamilyChanged, family, fmt.Sprintf(format, args...))
}

// cpuProvider reports usage since the previous read of the same label, so
// the first read of a sensor is the average since boot.
type cpuProvider struct {
	root fileRoot

	mu     sync.Mutex
	prev   map[string]cpuTimes
	listed []string
}

func (p *cpuProvider) Family() string { return "cpu" }

func (p *cpuProvider) Sensors() ([]Descriptor, error) {
	stat, err := p.root.read("stat")
	if err != nil {
		return nil, err
	}
	_, cores, err := parseCPUTimes(stat)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.listed = cores
	p.mu.Unlock()

	out := []Descriptor{{Family: "cpu", Label: "usage", Description: "Total CPU usage", Unit: UnitPercent}}
	for _, c := range cores {
		out = append(out, Descriptor{Family: "cpu", Label: c,
			Description: "Usage of core " + strings.TrimPrefix(c, "cpu"), Unit: UnitPercent})
	}
	return out, nil
}

func (p *cpuProvider) Read(label string) (Value, error) {
	stat, err := p.root.read("stat")
	if err != nil {
		return Value{}, err
	}
	times, cores, err := parseCPUTimes(stat)
	if err != nil {
		return Value{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listed == nil {
		p.listed = cores
	}
	if len(cores) != len(p.listed) {
		return Value{}, familyChanged("cpu", "%d cores, was %d", len(cores), len(p.listed))
	}

	key := label
	if label == "usage" {
		key = "cpu"
	}
	t, ok := times[key]
	if !ok {
		return Value{}, familyChanged("cpu", "%s is gone", label)
	}
	if p.prev == nil {
		p.prev = make(map[string]cpuTimes)
	}
	usage := t.usageSince(p.prev[key])
	p.prev[key] = t
	return Number(usage, UnitPercent), nil
}

type loadProvider struct {
	root fileRoot
}

var loadLabels = []string{"1min", "5min", "15min"}

func (p *loadProvider) Family() string { return "load" }

func (p *loadProvider) Sensors() ([]Descriptor, error) {
	if _, err := p.root.read("loadavg"); err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(loadLabels))
	for _, l := range loadLabels {
		out = append(out, Descriptor{Family: "load", Label: l,
			Description: "Load average over " + strings.TrimSuffix(l, "min") + " min", Unit: UnitLoad})
	}
	return out, nil
}

func (p *loadProvider) Read(label string) (Value, error) {
	raw, err := p.root.read("loadavg")
	if err != nil {
		return Value{}, err
	}
	load, err := parseLoadavg(raw)
	if err != nil {
		return Value{}, err
	}
	for i, l := range loadLabels {
		if l == label {
			return Number(load[i], UnitLoad), nil
		}
	}
	return Value{}, fmt.Errorf("unknown load sensor %q", label)
}

type memProvider struct {
	root fileRoot
}

var memDescriptors = []Descriptor{
	{Family: "mem", Label: "total", Description: "Installed memory", Unit: UnitBytes},
	{Family: "mem", Label: "used", Description: "Memory used, excluding cache", Unit: UnitBytes},
	{Family: "mem", Label: "available", Description: "Memory available to new programs", Unit: UnitBytes},
	{Family: "mem", Label: "used_pct", Description: "Memory used, excluding cache", Unit: UnitPercent},
	{Family: "mem", Label: "swap_used", Description: "Swap in use", Unit: UnitBytes},
}

func (p *memProvider) Family() string { return "mem" }

func (p *memProvider) Sensors() ([]Descriptor, error) {
	if _, err := p.root.read("meminfo"); err != nil {
		return nil, err
	}
	return append([]Descriptor(nil), memDescriptors...), nil
}

func (p *memProvider) Read(label string) (Value, error) {
	raw, err := p.root.read("meminfo")
	if err != nil {
		return Value{}, err
	}
	m, err := parseMeminfo(raw)
	if err != nil {
		return Value{}, err
	}
	switch label {
	case "total":
		return Number(float64(m.Total), UnitBytes), nil
	case "used":
		return Number(float64(m.Used()), UnitBytes), nil
	case "available":
		return Number(float64(m.Available), UnitBytes), nil
	case "used_pct":
		return Number(m.UsedPercent(), UnitPercent), nil
	case "swap_used":
		return Number(float64(m.SwapTotal-m.SwapFree), UnitBytes), nil
	}
	return Value{}, fmt.Errorf("unknown mem sensor %q", label)
}

// netProvider exposes cumulative byte counters as "<iface>.rx" and
// "<iface>.tx".
type netProvider struct {
	root fileRoot

	mu     sync.Mutex
	listed map[string]bool
}

func (p *netProvider) Family() string { return "net" }

func (p *netProvider) interfaces() ([]netCounters, error) {
	raw, err := p.root.read("net/dev")
	if err != nil {
		return nil, err
	}
	return parseNetDev(raw)
}

func (p *netProvider) Sensors() ([]Descriptor, error) {
	ifaces, err := p.interfaces()
	if err != nil {
		return nil, err
	}
	listed := make(map[string]bool, len(ifaces))
	var out []Descriptor
	for _, i := range ifaces {
		listed[i.Name] = true
		out = append(out,
			Descriptor{Family: "net", Label: i.Name + ".rx", Description: "Bytes received on " + i.Name, Unit: UnitBytes},
			Descriptor{Family: "net", Label: i.Name + ".tx", Description: "Bytes sent on " + i.Name, Unit: UnitBytes})
	}
	p.mu.Lock()
	p.listed = listed
	p.mu.Unlock()
	return out, nil
}

func (p *netProvider) Read(label string) (Value, error) {
	ifaces, err := p.interfaces()
	if err != nil {
		return Value{}, err
	}

	p.mu.Lock()
	listed := p.listed
	p.mu.Unlock()
	if listed != nil && len(listed) != len(ifaces) {
		return Value{}, familyChanged("net", "%d interfaces, was %d", len(ifaces), len(listed))
	}

	name, dir := label, ""
	if dot := strings.LastIndex(label, "."); dot != -1 {
		name, dir = label[:dot], label[dot+1:]
	}
	for _, i := range ifaces {
		if i.Name != name {
			continue
		}
		switch dir {
		case "rx":
			return Number(float64(i.RxBytes), UnitBytes), nil
		case "tx":
			return Number(float64(i.TxBytes), UnitBytes), nil
		}
		return Value{}, fmt.Errorf("unknown net sensor %q", label)
	}
	return Value{}, familyChanged("net", "%s is gone", name)
}

type uptimeProvider struct {
	root fileRoot
}

func (p *uptimeProvider) Family() string { return "uptime" }

func (p *uptimeProvider) Sensors() ([]Descriptor, error) {
	if _, err := p.root.read("uptime"); err != nil {
		return nil, err
	}
	return []Descriptor{{Family: "uptime", Label: "system", Description: "Time since boot", Unit: UnitSeconds}}, nil
}

func (p *uptimeProvider) Read(label string) (Value, error) {
	if label != "system" {
		return Value{}, fmt.Errorf("unknown uptime sensor %q", label)
	}
	raw, err := p.root.read("uptime")
	if err != nil {
		return Value{}, err
	}
	secs, err := parseUptime(raw)
	if err != nil {
		return Value{}, err
	}
	// Whole seconds, so the value changes once a second at most.
	return Number(float64(int64(secs)), UnitSeconds), nil
}

// thermalProvider reads /sys/class/thermal/thermal_zoneN as "zoneN".
type thermalProvider struct {
	root fileRoot
}

func (p *thermalProvider) Family() string { return "thermal" }

func (p *thermalProvider) Sensors() ([]Descriptor, error) {
	dirs, err := filepath.Glob(filepath.Join(string(p.root), "class", "thermal", "thermal_zone*"))
	if err != nil {
		return nil, err
	}
	sort.Slice(dirs, func(i, j int) bool { return zoneIndex(dirs[i]) < zoneIndex(dirs[j]) })

	var out []Descriptor
	for _, dir := range dirs {
		label := "zone" + strconv.Itoa(zoneIndex(dir))
		desc := "Thermal zone"
		if kind, err := os.ReadFile(filepath.Join(dir, "type")); err == nil {
			desc = strings.TrimSpace(string(kind))
		}
		out = append(out, Descriptor{Family: "thermal", Label: label, Description: desc, Unit: UnitCelsius})
	}
	return out, nil
}

func (p *thermalProvider) Read(label string) (Value, error) {
	n := strings.TrimPrefix(label, "zone")
	raw, err := p.root.read(filepath.Join("class", "thermal", "thermal_zone"+n, "temp"))
	if err != nil {
		if os.IsNotExist(err) {
			return Value{}, familyChanged("thermal", "%s is gone", label)
		}
		return Value{}, err
	}
	c, err := parseMillidegrees(raw)
	if err != nil {
		return Value{}, err
	}
	return Number(c, UnitCelsius), nil
}

func zoneIndex(dir string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(dir), "thermal_zone"))
	if err != nil {
		return -1
	}
	return n
}
