// Package sensors is the data source behind the dashboard.
//
// # Model
//
// A Provider exposes one sensor family (cpu, load, mem, net, thermal,
// uptime, or a remote host alias) as a list of Descriptors and reads their
// current Values. The Registry owns the watch list: the ordered set of
// Sensors that matched a watch pattern, each with its own update period and
// next-update deadline.
//
//	cpu/usage        mem/used_pct      load/1min
//	net/eth0.rx      thermal/zone0     web1/load1
//
// # Locking
//
// The watch list is guarded by a sync.RWMutex exposed through Lock/Unlock
// and RLock/RUnlock. Callers of Watched must hold one of them. The mutating
// methods (AddWatch, RemoveWatch, RemoveImplicit, Refresh) and UnifiedPeriod
// take the lock themselves. A Sensor's value and deadline have their own
// mutex, so a reader holding only the registry read lock can format values
// while an update check runs.
//
// # Update checks
//
// Update(s, now) reads a sensor only when its deadline has passed and
// reports Updated, Unchanged, or NeedsReload. NeedsReload means the sensor's
// family changed shape (a network interface or thermal zone appeared or
// vanished) and the caller should rebuild whatever it derived from the
// watch list. Refresh drops watches whose sensor no longer exists.
//
// # Periods
//
// UnifiedPeriod folds every watched period into one tick with MergePeriods,
// a greatest-common-divisor fold with a shrinking tolerance.
package sensors
