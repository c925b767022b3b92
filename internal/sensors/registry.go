package sensors

import (
	stderrors "errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"github.com/rileyhilliard/sensdash/internal/logger"
)

// ErrFamilyChanged is returned by a Provider when the set of sensors it
// exposes differs from what was listed before.
var ErrFamilyChanged = stderrors.New("sensor family changed")

// Provider exposes one sensor family.
type Provider interface {
	// Family returns the family name, the first path component.
	Family() string
	// Sensors lists what the family can read right now.
	Sensors() ([]Descriptor, error)
	// Read returns the current value of one sensor.
	Read(label string) (Value, error)
}

// Registry is the watch list plus the providers that feed it.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	byFamily  map[string]Provider
	watched   []*Sensor
	staleMu   sync.Mutex
	stale     map[string]bool
	log       logger.Logger
}

// NewRegistry creates a registry over the given providers. The provider set
// is fixed for the registry's lifetime.
func NewRegistry(log logger.Logger, providers ...Provider) *Registry {
	if log == nil {
		log = logger.Noop()
	}
	byFamily := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byFamily[p.Family()] = p
	}
	return &Registry{
		providers: providers,
		byFamily:  byFamily,
		stale:     make(map[string]bool),
		log:       log,
	}
}

func (r *Registry) Lock()    { r.mu.Lock() }
func (r *Registry) Unlock()  { r.mu.Unlock() }
func (r *Registry) RLock()   { r.mu.RLock() }
func (r *Registry) RUnlock() { r.mu.RUnlock() }

// Watched returns the watch list in display order. The caller must hold the
// read or write lock and must not modify the slice.
func (r *Registry) Watched() []*Sensor {
	return r.watched
}

// Available lists every sensor of every family, watched or not. Families
// that fail to list are logged and skipped.
func (r *Registry) Available() []Descriptor {
	var out []Descriptor
	for _, p := range r.providers {
		ds, err := p.Sensors()
		if err != nil {
			r.log.Warn("listing %s: %v", p.Family(), err)
			continue
		}
		out = append(out, ds...)
	}
	return out
}

// Match reports whether a watch pattern matches a sensor path. Patterns are
// path.Match globs over "family/label"; a pattern without a slash matches
// the whole family.
func Match(pattern, sensorPath string, caseSensitive bool) bool {
	if !caseSensitive {
		pattern = strings.ToLower(pattern)
		sensorPath = strings.ToLower(sensorPath)
	}
	if !strings.Contains(pattern, "/") {
		pattern += "/*"
	}
	ok, err := path.Match(pattern, sensorPath)
	return err == nil && ok
}

// AddWatch watches every available sensor matching pattern with the given
// period. Sensors already watched get the new period; an explicit watch
// turns an implicit one explicit. Returns how many sensors matched.
func (r *Registry) AddWatch(pattern string, period time.Duration, caseSensitive, implicit bool) (int, error) {
	if pattern == "" {
		return 0, errors.New(errors.ErrSensor, "Empty watch pattern",
			"Use family/label globs such as cpu/* or thermal/zone0.")
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrSensor,
			fmt.Sprintf("Invalid watch pattern '%s'", pattern),
			"Check for unbalanced brackets in the pattern.")
	}
	if period <= 0 {
		return 0, errors.New(errors.ErrSensor,
			fmt.Sprintf("Invalid period %s for '%s'", period, pattern),
			"Use a positive duration such as 1s or 500ms.")
	}

	candidates := r.Available()

	r.mu.Lock()
	defer r.mu.Unlock()

	index := make(map[string]*Sensor, len(r.watched))
	for _, s := range r.watched {
		index[s.Path()] = s
	}

	n := 0
	for _, d := range candidates {
		if !Match(pattern, d.Path(), caseSensitive) {
			continue
		}
		n++
		if s, ok := index[d.Path()]; ok {
			s.setWatch(period, implicit && s.Implicit())
			continue
		}
		s := newSensor(d, period, implicit)
		r.watched = append(r.watched, s)
		index[d.Path()] = s
	}
	r.log.Debug("watch %q period=%s implicit=%v matched %d", pattern, period, implicit, n)
	return n, nil
}

// RemoveWatch drops every watched sensor matching pattern and returns how
// many were removed.
func (r *Registry) RemoveWatch(pattern string, caseSensitive bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(func(s *Sensor) bool {
		return Match(pattern, s.Path(), caseSensitive)
	})
}

// RemoveImplicit drops every sensor that is watched only for the status bar.
func (r *Registry) RemoveImplicit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(func(s *Sensor) bool { return s.Implicit() })
}

func (r *Registry) removeLocked(drop func(*Sensor) bool) int {
	kept := r.watched[:0]
	removed := 0
	for _, s := range r.watched {
		if drop(s) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(r.watched); i++ {
		r.watched[i] = nil
	}
	r.watched = kept
	return removed
}

// Refresh re-lists families that reported a change and drops watched
// sensors that no longer exist. Returns how many were dropped.
func (r *Registry) Refresh() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staleMu.Lock()
	stale := r.stale
	r.stale = make(map[string]bool)
	r.staleMu.Unlock()
	if len(stale) == 0 {
		return 0
	}

	present := make(map[string]bool)
	for family := range stale {
		p, ok := r.byFamily[family]
		if !ok {
			continue
		}
		ds, err := p.Sensors()
		if err != nil {
			r.log.Warn("relisting %s: %v", family, err)
			continue
		}
		for _, d := range ds {
			present[d.Path()] = true
		}
	}

	dropped := r.removeLocked(func(s *Sensor) bool {
		return stale[s.Family] && !present[s.Path()]
	})
	if dropped > 0 {
		r.log.Info("dropped %d vanished sensors", dropped)
	}
	return dropped
}

// Update reads s if it is due at now. Read failures are logged and the
// sensor is retried one period later.
func (r *Registry) Update(s *Sensor, now time.Time) UpdateStatus {
	if !s.due(now) {
		return Unchanged
	}
	p, ok := r.byFamily[s.Family]
	if !ok {
		s.postpone(now)
		return Unchanged
	}

	v, err := p.Read(s.Label)
	if err != nil {
		if stderrors.Is(err, ErrFamilyChanged) {
			r.markStale(s.Family)
			return NeedsReload
		}
		r.log.Debug("read %s: %v", s.Path(), err)
		s.postpone(now)
		return Unchanged
	}
	if s.store(v, now) {
		return Updated
	}
	return Unchanged
}

// markStale runs under the caller's read lock, so stale has its own mutex.
func (r *Registry) markStale(family string) {
	r.staleMu.Lock()
	defer r.staleMu.Unlock()
	r.stale[family] = true
}

// UnifiedPeriod merges the periods of every watched sensor into one tick
// (see MergePeriods). Zero when nothing is watched.
func (r *Registry) UnifiedPeriod(tolerance time.Duration) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	periods := make([]time.Duration, 0, len(r.watched))
	for _, s := range r.watched {
		periods = append(periods, s.Period())
	}
	return MergePeriods(tolerance, periods...)
}
