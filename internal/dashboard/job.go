package dashboard

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/sensdash/internal/errors"
)

// Job timing.
const (
	jobStartTimeout = 2 * time.Second
	jobStopTimeout  = 2 * time.Second
)

// job is the background update worker. It holds mu for its whole life
// except while blocked in cond.Wait, so whoever holds mu knows no scan is
// running. quit is readable without mu so a scan can give up between
// sensors once halt has been asked for.
type job struct {
	mu   sync.Mutex
	cond *sync.Cond

	scan func(now time.Time) // runs with mu held

	now     time.Time
	woken   bool
	stop    bool
	updates int

	quit    atomic.Bool
	running atomic.Bool
	done    chan struct{}
}

func newJob(scan func(time.Time)) *job {
	j := &job{scan: scan}
	j.cond = sync.NewCond(&j.mu)
	return j
}

// start launches the worker and returns once it is waiting for wakes.
func (j *job) start() error {
	if j.running.Load() {
		return errors.New(errors.ErrWorker, "Update job already running", "")
	}
	j.quit.Store(false)
	j.done = make(chan struct{})
	j.running.Store(true)

	j.mu.Lock()
	j.stop = false
	j.mu.Unlock()

	ready := make(chan struct{})
	go j.loop(ready)

	select {
	case <-ready:
		return nil
	case <-time.After(jobStartTimeout):
		return errors.New(errors.ErrWorker, "Update job did not start", "")
	}
}

func (j *job) loop(ready chan<- struct{}) {
	done := j.done
	defer close(done)

	j.mu.Lock()
	defer j.mu.Unlock()
	close(ready)

	for {
		for !j.woken && !j.stop {
			j.cond.Wait()
		}
		if j.stop {
			j.running.Store(false)
			return
		}
		j.woken = false
		j.scan(j.now)
	}
}

// wake asks for a scan as of now.
func (j *job) wake(now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.now = now
	j.woken = true
	j.cond.Signal()
}

// stopping reports whether halt has been called. Scans poll it between
// sensor reads.
func (j *job) stopping() bool { return j.quit.Load() }

// halt stops the worker and waits up to timeout for it to exit. A scan stuck
// in a sensor read keeps mu, so the stop request is delivered aside and the
// timeout still applies.
func (j *job) halt(timeout time.Duration) error {
	if !j.running.Load() {
		return nil
	}
	j.quit.Store(true)
	done := j.done
	go func() {
		j.mu.Lock()
		j.stop = true
		j.cond.Broadcast()
		j.mu.Unlock()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New(errors.ErrWorker, "Update job did not stop in time",
			"A sensor read may be hanging; check the log file.")
	}
}

// Updates returns how many sensor updates the job has drawn.
func (j *job) Updates() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.updates
}
