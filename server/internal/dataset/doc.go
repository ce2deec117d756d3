// Package dataset holds the immutable launch-record table the dashboard is
// built on, together with the loaders that produce it.
//
// A Dataset is built once at startup from a tabular source:
//
//	LoadCSV(r, source, opts)              header-keyed CSV
//	LoadXLSX(path, opts)                  first sheet (or opts.Sheet) of a workbook
//	LoadSQL(ctx, db, table, opts)         SELECT * from a sqlite or postgres table
//	LoadDSN(ctx, driver, dsn, table, opts) connect, then LoadSQL
//	LoadFile(ctx, path, table, opts)      dispatch on file extension
//
// Every loader fails with *DataLoadError when a required column is missing,
// a value does not parse, a site is unknown or the source has no rows.
// Payload bounds, the site list and the payload/site profile are computed
// once in New and never change afterwards.
package dataset
