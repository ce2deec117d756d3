// Package api implements the HTTP surface of the launchdash server.
//
// New(opts) returns a chi-routed Handler that serves:
//
//	GET /api/v1/health                  status, record and site counts, uptime
//	GET /api/v1/dataset                 bounds, sites, dropdown options, slider, profile
//	GET /api/v1/summary?site=           success-ratio view
//	GET /api/v1/scatter?site=&low=&high=  payload-vs-outcome view
//	GET /api/v1/views?site=&low=&high=    both views, computed concurrently
//	GET /api/v1/charts/{view}.{fmt}     summary|scatter as png|svg; 204 when empty
//	GET /api/v1/settings                live dashboard settings
//	GET /metrics                        when Options.Metrics is set
//	GET /ws/stream                      when Options.Stream is set
//
// Missing query values default to the configured site and the full dataset
// payload range. An invalid filter yields 400, a wrong method 405, any other
// failure 500, all with a {"error": "..."} body.
//
// JSON types are defined in types.go; the ws package reuses
// BuildDatasetResponse for its first event.
package api
