package dashboard

import (
	"time"
)

// promptAdd asks for a pattern and a period, then watches what matches.
// exact makes the match case-sensitive and pre-fills the selected sensor.
// The callbacks may run later on the event loop or straight away, so no
// lock is held across Prompt.
func (d *Dashboard) promptAdd(exact bool) {
	def := d.lastPattern
	if exact {
		if s := d.Selected(); s != nil {
			def = s.Path()
		}
	}
	d.scr.Prompt("Watch pattern: ", def, func(pattern string, ok bool) {
		if !ok || pattern == "" {
			return
		}
		d.lastPattern = pattern
		d.scr.Prompt("Update period: ", d.lastPeriod.String(), func(value string, ok bool) {
			if !ok {
				return
			}
			period, err := time.ParseDuration(value)
			if err != nil || period <= 0 {
				d.log.Warn("ignoring period %q: use a duration such as 1s or 500ms", value)
				return
			}
			d.lastPeriod = period

			d.lockUpdate()
			n, err := d.src.AddWatch(pattern, period, exact, false)
			d.unlockUpdate()
			if err != nil {
				d.log.Warn("%v", err)
				return
			}
			d.log.Info("watching %d sensors for %s every %s", n, pattern, period)
			if n > 0 {
				d.setFlags(FlagCompute)
			}
		})
	})
}

// promptDelete asks for a pattern and stops watching what matches.
func (d *Dashboard) promptDelete(exact bool) {
	def := d.lastPattern
	if exact {
		if s := d.Selected(); s != nil {
			def = s.Path()
		}
	}
	d.scr.Prompt("Stop watching: ", def, func(pattern string, ok bool) {
		if !ok || pattern == "" {
			return
		}
		d.lastPattern = pattern

		d.lockUpdate()
		n := d.src.RemoveWatch(pattern, exact)
		d.unlockUpdate()
		d.log.Info("stopped watching %d sensors for %s", n, pattern)
		if n > 0 {
			d.setFlags(FlagCompute)
		}
	})
}
