// Package testing provides a screen double for dashboard tests.
package testing

import (
	"sync"

	"github.com/rileyhilliard/sensdash/internal/screen"
)

// Answer is a queued reply to a prompt. OK=false behaves like Esc.
type Answer struct {
	Value string
	OK    bool
}

// PromptCall records one prompt shown.
type PromptCall struct {
	Label   string
	Default string
}

// FakeScreen is an in-memory screen. Prompts are answered synchronously from
// a queue; with the queue empty they are cancelled.
type FakeScreen struct {
	*screen.Canvas

	mu       sync.Mutex
	answers  []Answer
	prompts  []PromptCall
	suspends int

	Dark bool
}

// NewFakeScreen creates a blank fake screen with a dark background.
func NewFakeScreen(rows, cols int) *FakeScreen {
	return &FakeScreen{Canvas: screen.NewCanvas(rows, cols), Dark: true}
}

// Answer queues replies for upcoming prompts.
func (f *FakeScreen) Answer(answers ...Answer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answers...)
}

// Prompt implements the dashboard screen.
func (f *FakeScreen) Prompt(label, def string, done func(string, bool)) {
	f.mu.Lock()
	f.prompts = append(f.prompts, PromptCall{Label: label, Default: def})
	a := Answer{}
	if len(f.answers) > 0 {
		a = f.answers[0]
		f.answers = f.answers[1:]
	}
	f.mu.Unlock()
	done(a.Value, a.OK)
}

// Prompts returns every prompt shown so far.
func (f *FakeScreen) Prompts() []PromptCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PromptCall(nil), f.prompts...)
}

// Suspend counts suspend requests.
func (f *FakeScreen) Suspend() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspends++
}

// Suspends returns how many times Suspend was called.
func (f *FakeScreen) Suspends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspends
}

// DarkBackground returns Dark.
func (f *FakeScreen) DarkBackground() bool { return f.Dark }
