// Package types defines the value types shared by the server, the CLI and
// their tests: launch sites, launch records and the filter state a
// presentation layer hands to the aggregation engine.
//
// Every type here is a plain value. Nothing in this package is mutated after
// construction, so values can be shared freely between goroutines.
package types
