package sensors

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Unit describes how a sensor value is formatted.
type Unit int

const (
	UnitNone Unit = iota
	UnitPercent
	UnitBytes
	UnitCelsius
	UnitSeconds
	UnitLoad
)

// String returns the unit suffix used in descriptions.
func (u Unit) String() string {
	switch u {
	case UnitPercent:
		return "%"
	case UnitBytes:
		return "bytes"
	case UnitCelsius:
		return "°C"
	case UnitSeconds:
		return "s"
	case UnitLoad:
		return "load"
	default:
		return ""
	}
}

// Value is a single reading.
type Value struct {
	Num   float64
	Text  string // non-numeric readings; takes precedence over Num when set
	Unit  Unit
	Valid bool
}

// Number builds a valid numeric value.
func Number(n float64, unit Unit) Value {
	return Value{Num: n, Unit: unit, Valid: true}
}

// Equal reports whether two readings would render the same.
func (v Value) Equal(o Value) bool {
	if v.Valid != o.Valid || v.Unit != o.Unit || v.Text != o.Text {
		return false
	}
	return v.Num == o.Num || (math.IsNaN(v.Num) && math.IsNaN(o.Num))
}

// String formats the value for display.
func (v Value) String() string {
	if !v.Valid {
		return "--"
	}
	if v.Text != "" {
		return v.Text
	}
	switch v.Unit {
	case UnitPercent:
		return fmt.Sprintf("%.1f%%", v.Num)
	case UnitBytes:
		if v.Num < 0 {
			return "-" + humanize.IBytes(uint64(-v.Num))
		}
		return humanize.IBytes(uint64(v.Num))
	case UnitCelsius:
		return fmt.Sprintf("%.1f°C", v.Num)
	case UnitSeconds:
		return formatSeconds(v.Num)
	case UnitLoad:
		return fmt.Sprintf("%.2f", v.Num)
	default:
		return fmt.Sprintf("%g", v.Num)
	}
}

// formatSeconds renders uptimes as "3d 04:05:06" or "04:05:06".
func formatSeconds(secs float64) string {
	total := int64(secs)
	days := total / 86400
	total %= 86400
	h, m, s := total/3600, (total%3600)/60, total%60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Descriptor identifies a sensor a provider can read.
type Descriptor struct {
	Family      string
	Label       string
	Description string
	Unit        Unit
}

// Path returns "family/label", the string watch patterns match against.
func (d Descriptor) Path() string {
	return d.Family + "/" + d.Label
}

// UpdateStatus is the outcome of an update check.
type UpdateStatus int

const (
	// Unchanged: not due yet, unreadable, or same value as before.
	Unchanged UpdateStatus = iota
	// Updated: a new value was stored.
	Updated
	// NeedsReload: the sensor's family changed shape.
	NeedsReload
)

// String returns a human-readable status.
func (s UpdateStatus) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	case NeedsReload:
		return "needs-reload"
	default:
		return "unknown"
	}
}

// Sensor is one watched quantity. Identity is the pointer: the dashboard
// keys its per-sensor display records on *Sensor.
type Sensor struct {
	Descriptor

	mu       sync.Mutex
	period   time.Duration
	implicit bool
	value    Value
	next     time.Time
	reads    int
}

func newSensor(d Descriptor, period time.Duration, implicit bool) *Sensor {
	return &Sensor{Descriptor: d, period: period, implicit: implicit}
}

// Period returns the sensor's update period.
func (s *Sensor) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// Implicit reports whether the sensor is watched only to feed the status bar.
func (s *Sensor) Implicit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.implicit
}

// Value returns the last stored reading.
func (s *Sensor) Value() Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// NextUpdate returns when the sensor is next due for a read.
func (s *Sensor) NextUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Reads returns how many successful reads the sensor has had.
func (s *Sensor) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *Sensor) setWatch(period time.Duration, implicit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = period
	s.implicit = implicit
	s.next = time.Time{}
}

// due reports whether now is at or past the deadline.
func (s *Sensor) due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !now.Before(s.next)
}

// store records a read made at now and advances the deadline.
func (s *Sensor) store(v Value, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = now.Add(s.period)
	s.reads++
	if s.reads > 1 && s.value.Equal(v) {
		return false
	}
	s.value = v
	return true
}

// postpone advances the deadline after a failed read.
func (s *Sensor) postpone(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = now.Add(s.period)
}
