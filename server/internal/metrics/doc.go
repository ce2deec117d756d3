// Package metrics keeps the server's in-process counters and gauges and
// exposes them in the Prometheus text exposition format.
//
// Registry implements compute.Recorder so the engine reports every query
// without importing this package. The ws hub and the config watcher update
// the remaining series directly.
package metrics
