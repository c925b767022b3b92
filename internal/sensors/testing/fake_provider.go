// Package testing provides test doubles for the sensors package.
package testing

import (
	"fmt"
	"sync"

	"github.com/rileyhilliard/sensdash/internal/sensors"
)

// FakeProvider is a sensor family whose values and shape tests control.
type FakeProvider struct {
	mu sync.Mutex

	family string
	labels []string
	values map[string]sensors.Value
	errs   map[string]error

	// changed makes every read report ErrFamilyChanged until the family is
	// listed again.
	changed bool

	// Call tracking
	ReadCalls map[string]int
	ListCalls int
}

// NewFakeProvider creates a family with the given labels, each reading 0.
func NewFakeProvider(family string, labels ...string) *FakeProvider {
	p := &FakeProvider{
		family:    family,
		values:    make(map[string]sensors.Value),
		errs:      make(map[string]error),
		ReadCalls: make(map[string]int),
	}
	for _, l := range labels {
		p.labels = append(p.labels, l)
		p.values[l] = sensors.Number(0, sensors.UnitNone)
	}
	return p
}

// Numbered creates a family with labels s0..s(n-1).
func Numbered(family string, n int) *FakeProvider {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("s%d", i)
	}
	return NewFakeProvider(family, labels...)
}

// Set changes the value a label reads.
func (p *FakeProvider) Set(label string, v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[label] = sensors.Number(v, sensors.UnitNone)
}

// Fail makes reads of label return err. A nil err clears the failure.
func (p *FakeProvider) Fail(label string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.errs, label)
		return
	}
	p.errs[label] = err
}

// Remove drops label from the family. Reads report ErrFamilyChanged until
// the family is listed again.
func (p *FakeProvider) Remove(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, l := range p.labels {
		if l == label {
			p.labels = append(p.labels[:i], p.labels[i+1:]...)
			break
		}
	}
	delete(p.values, label)
	p.changed = true
}

// Add appends a new label reading 0. Reads report ErrFamilyChanged until the
// family is listed again.
func (p *FakeProvider) Add(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labels = append(p.labels, label)
	p.values[label] = sensors.Number(0, sensors.UnitNone)
	p.changed = true
}

// Reads returns how many times label was read.
func (p *FakeProvider) Reads(label string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ReadCalls[label]
}

func (p *FakeProvider) Family() string { return p.family }

func (p *FakeProvider) Sensors() ([]sensors.Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls++
	p.changed = false
	out := make([]sensors.Descriptor, 0, len(p.labels))
	for _, l := range p.labels {
		out = append(out, sensors.Descriptor{
			Family:      p.family,
			Label:       l,
			Description: "fake " + l,
		})
	}
	return out, nil
}

func (p *FakeProvider) Read(label string) (sensors.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ReadCalls[label]++
	if p.changed {
		return sensors.Value{}, fmt.Errorf("%w: %s", sensors.ErrFamilyChanged, p.family)
	}
	if err, ok := p.errs[label]; ok {
		return sensors.Value{}, err
	}
	v, ok := p.values[label]
	if !ok {
		return sensors.Value{}, fmt.Errorf("%w: %s/%s is gone", sensors.ErrFamilyChanged, p.family, label)
	}
	return v, nil
}

var _ sensors.Provider = (*FakeProvider)(nil)
