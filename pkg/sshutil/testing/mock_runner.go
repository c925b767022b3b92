// Package testing provides an in-memory sshutil.Runner.
package testing

import (
	"fmt"
	"sync"

	"github.com/rileyhilliard/sensdash/pkg/sshutil"
)

// MockRunner answers commands from a table of canned outputs.
type MockRunner struct {
	mu       sync.Mutex
	host     string
	outputs  map[string]string
	failures map[string]error
	calls    []string
	closed   bool
}

// NewMockRunner creates a runner for host with no canned outputs.
func NewMockRunner(host string) *MockRunner {
	return &MockRunner{
		host:     host,
		outputs:  make(map[string]string),
		failures: make(map[string]error),
	}
}

// SetOutput makes cmd print out.
func (m *MockRunner) SetOutput(cmd, out string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[cmd] = out
	delete(m.failures, cmd)
}

// SetError makes cmd fail with err.
func (m *MockRunner) SetError(cmd string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[cmd] = err
}

// Output returns the canned output for cmd.
func (m *MockRunner) Output(cmd string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cmd)
	if m.closed {
		return nil, fmt.Errorf("connection to %s closed", m.host)
	}
	if err, ok := m.failures[cmd]; ok {
		return nil, err
	}
	out, ok := m.outputs[cmd]
	if !ok {
		return nil, fmt.Errorf("unexpected command %q", cmd)
	}
	return []byte(out), nil
}

// Close marks the runner closed.
func (m *MockRunner) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockRunner) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host the mock was created for.
func (m *MockRunner) GetHost() string {
	return m.host
}

// Calls returns the commands run so far.
func (m *MockRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Dialer returns an sshutil.Dialer handing out runners from the map, or an
// error for unknown hosts.
func Dialer(runners map[string]*MockRunner) sshutil.Dialer {
	return func(host string) (sshutil.Runner, error) {
		r, ok := runners[host]
		if !ok {
			return nil, fmt.Errorf("no route to %s", host)
		}
		return r, nil
	}
}

var _ sshutil.Runner = (*MockRunner)(nil)
