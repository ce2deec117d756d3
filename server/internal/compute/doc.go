// Package compute is the aggregation engine behind the dashboard.
//
// Two pure functions derive the dashboard views from an immutable
// *dataset.Dataset and the current filter:
//
//	SuccessSummary(ds, site)         successes per site (ALL), or the
//	                                  Failure/Success split for one site
//	Scatter(ds, site, payloadRange)  records matching the filter, annotated
//	                                  with the key they are colored by
//
// Neither keeps state or has side effects, so the presentation layer may call
// them concurrently and in any order. Engine wraps both for the server and the
// CLI: it validates input, computes the two views concurrently, optionally
// memoizes them per filter and reports query timings to a Recorder.
//
// Malformed input (empty site selection, NaN bounds, unparsable request
// values) is rejected with *InvalidFilterError. Infinite bounds are valid and
// leave that side of the payload range open. Empty results are
// valid output, never errors.
package compute
