package sensors

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// cpuTimes is one cpu line of /proc/stat reduced to what usage needs.
type cpuTimes struct {
	total int64
	idle  int64 // idle + iowait
}

// usageSince returns the busy percentage between prev and t. A zero prev
// gives the average since boot.
func (t cpuTimes) usageSince(prev cpuTimes) float64 {
	total := t.total - prev.total
	idle := t.idle - prev.idle
	if total <= 0 {
		return 0
	}
	return float64(total-idle) / float64(total) * 100
}

// parseCPUTimes parses /proc/stat. The aggregate line is keyed "cpu", cores
// are keyed "cpu0", "cpu1", and so on. Cores are also returned in file order.
func parseCPUTimes(procStat string) (map[string]cpuTimes, []string, error) {
	times := make(map[string]cpuTimes)
	var cores []string

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "cpu") {
			continue
		}
		if len(fields) < 5 {
			return nil, nil, fmt.Errorf("invalid /proc/stat cpu line: %s", scanner.Text())
		}

		// cpu user nice system idle iowait irq softirq steal guest guest_nice
		var t cpuTimes
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse %s field %d: %w", fields[0], i, err)
			}
			t.total += val
			if i == 4 || i == 5 {
				t.idle += val
			}
		}
		times[fields[0]] = t
		if fields[0] != "cpu" {
			cores = append(cores, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if _, ok := times["cpu"]; !ok {
		return nil, nil, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return times, cores, nil
}

// parseLoadavg parses the three load averages of /proc/loadavg.
func parseLoadavg(procLoadavg string) ([3]float64, error) {
	var load [3]float64
	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return load, fmt.Errorf("invalid /proc/loadavg: %q", procLoadavg)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return load, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		load[i] = val
	}
	return load, nil
}

// memInfo holds the /proc/meminfo fields the mem family exposes, in bytes.
type memInfo struct {
	Total, Free, Available, Buffers, Cached int64
	SwapTotal, SwapFree                     int64
}

// Used excludes buffers and page cache.
func (m memInfo) Used() int64 {
	return m.Total - m.Free - m.Buffers - m.Cached
}

// UsedPercent is used memory over total.
func (m memInfo) UsedPercent() float64 {
	if m.Total <= 0 {
		return 0
	}
	return float64(m.Used()) / float64(m.Total) * 100
}

// parseMeminfo parses /proc/meminfo.
func parseMeminfo(procMeminfo string) (memInfo, error) {
	var m memInfo
	found := 0

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		val *= 1024 // kB

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			m.Total = val
			found++
		case "MemFree":
			m.Free = val
			found++
		case "MemAvailable":
			m.Available = val
			found++
		case "Buffers":
			m.Buffers = val
		case "Cached":
			m.Cached = val
		case "SwapTotal":
			m.SwapTotal = val
		case "SwapFree":
			m.SwapFree = val
		}
	}
	if err := scanner.Err(); err != nil {
		return m, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if found < 3 {
		return m, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}
	return m, nil
}

// netCounters is one interface line of /proc/net/dev.
type netCounters struct {
	Name    string
	RxBytes int64
	TxBytes int64
}

// parseNetDev parses /proc/net/dev, skipping the two header lines.
func parseNetDev(procNetDev string) ([]netCounters, error) {
	var out []netCounters
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= 2 {
			continue
		}
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		if len(fields) < 16 {
			continue
		}
		rx, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rx bytes for %s: %w", name, err)
		}
		tx, err := strconv.ParseInt(fields[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tx bytes for %s: %w", name, err)
		}
		out = append(out, netCounters{Name: name, RxBytes: rx, TxBytes: tx})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}
	return out, nil
}

// parseUptime returns the first field of /proc/uptime in seconds.
func parseUptime(procUptime string) (float64, error) {
	fields := strings.Fields(procUptime)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty /proc/uptime")
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uptime: %w", err)
	}
	return secs, nil
}

// parseMillidegrees parses a sysfs thermal_zone temp file.
func parseMillidegrees(temp string) (float64, error) {
	milli, err := strconv.ParseInt(strings.TrimSpace(temp), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse temperature %q: %w", temp, err)
	}
	return float64(milli) / 1000, nil
}
