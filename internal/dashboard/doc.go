// Package dashboard implements the interactive sensor screen: the layout
// engine, the render state machine and the background update job.
//
// # Architecture
//
// A Dashboard is driven by screen events through Handle:
//
//	init   - note start time and deadlines, send the log to a file
//	start  - start the update job, draw the header
//	loop   - recompute the layout if flagged, redraw if flagged, wake the job
//	timer  - draw the clock, check timeout, window size and sensor deadlines
//	input  - keys: selection, paging, add/remove watches, special pages
//	end    - stop the update job
//	exit   - restore the log
//
// Pending work is carried between events in State: a Page (normal, help,
// list or status bar only) plus Flags (draw, compute, check updates, draw
// special).
//
// # Layout
//
// Compute turns the terminal size and the watch list into a Layout: one
// Record per sensor giving its page, row and column, its padded label and
// its neighbors in display order, plus the status-bar Extras packed along
// the bottom row.
//
//	row 0        sensdash  up 1d 02:03:04                 12:00:00
//	row 1        ──────────────────────────────────── page 1/3 ──
//	rows 2..n-3  cpu/usage      12.5%   load/1min       0.42
//	row n-2      cpu/usage  every 1s, next in 400ms  CPU usage
//	row n-1      [temp 52.0°C|mem  41.0%|load  0.42|cpu  12.5%]
//
// # Concurrency
//
// The update job holds its mutex except while waiting to be woken. The
// event loop calls lockUpdate before touching the layout or the selection,
// so it never races a scan; the job only flags FlagCompute and leaves the
// recompute to the next loop event.
package dashboard
