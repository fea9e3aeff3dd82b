// Package stats provides the shared, mutex-guarded statistics record for
// the pinger. The prober is the sole writer; the status server takes
// point-in-time snapshots for the /stats route. The record maintains the
// invariant total_pings == successful_pings + failed_pings after every
// completed cycle.
package stats
