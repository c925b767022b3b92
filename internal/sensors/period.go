package sensors

import "time"

// MinTolerance is the smallest tolerance MergePeriods tries before falling
// back to an exact greatest common divisor.
const MinTolerance = 10 * time.Millisecond

// periodGranularity is what inputs are rounded to before merging, so the
// exact fallback never degenerates to nanoseconds.
const periodGranularity = time.Millisecond

// GCD returns the greatest common divisor of a and b, treating any
// remainder at or below tolerance as zero. A zero tolerance gives the exact
// result. Zero inputs are ignored.
func GCD(a, b, tolerance time.Duration) time.Duration {
	if a <= 0 {
		return b
	}
	if b <= 0 {
		return a
	}
	if a < b {
		a, b = b, a
	}
	for b > tolerance && b > 0 {
		a, b = b, a%b
	}
	return a
}

// divides reports whether p is a multiple of g within tolerance.
func divides(g, p, tolerance time.Duration) bool {
	r := p % g
	return r <= tolerance || g-r <= tolerance
}

// MergePeriods folds periods into a single tick that divides each of them
// within the tolerance it was found at. Non-positive periods are skipped; if
// none remain the result is zero.
//
// The fold starts at tolerance (capped at half the smallest period) and
// halves it until the candidate divides every input; below MinTolerance it
// falls back to the exact GCD at millisecond granularity. The result never
// exceeds the smallest input.
func MergePeriods(tolerance time.Duration, periods ...time.Duration) time.Duration {
	var ps []time.Duration
	smallest := time.Duration(0)
	for _, p := range periods {
		if p <= 0 {
			continue
		}
		p = p.Round(periodGranularity)
		if p < periodGranularity {
			p = periodGranularity
		}
		ps = append(ps, p)
		if smallest == 0 || p < smallest {
			smallest = p
		}
	}
	if len(ps) == 0 {
		return 0
	}

	tol := tolerance
	if tol > smallest/2 {
		tol = smallest / 2
	}
	for {
		if tol < MinTolerance {
			tol = 0
		}
		g := ps[0]
		for _, p := range ps[1:] {
			g = GCD(g, p, tol)
		}
		if tol == 0 {
			return g
		}
		ok := g > 0 && g <= smallest
		for _, p := range ps {
			if !ok {
				break
			}
			ok = divides(g, p, tol)
		}
		if ok {
			return g
		}
		tol /= 2
	}
}
