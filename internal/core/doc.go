// Package core holds the result-sheet pipeline: parsing an uploaded CSV into
// a Table, deriving views from it, encoding views as CSV or XLSX, and keeping
// the latest table per cohort in a Catalog.
//
// It has no HTTP or storage dependencies beyond the BlobArchive interface and
// can be driven by the web server, the resultctl CLI, or tests.
//
// # Pipeline
//
//  1. [Service.Upload] validates the request and takes an upload slot
//  2. [ParseTable] finds the header, coerces grades and statuses
//  3. The table replaces any earlier one for the cohort in the [Catalog]
//  4. The raw bytes go to the [BlobArchive]; failures are logged only
//
// Views ([TopN], [FilterByStatus], [AboveAverage], [Summarize], ...) are pure
// functions of a Table. [Export] writes any [View].
//
// # Error Handling
//
// Parse and lookup failures are typed ([SchemaError], [NotFoundError],
// [EmptyTableError], [UnsupportedFormatError]). [MapError] turns any error
// into a user message with a support code.
package core
