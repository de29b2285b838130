// Package validator checks manually prepared CSV files before they are
// imported into the messaging platform.
//
// It is a pure function of (bytes, project, column configuration): no I/O,
// no logging, no state kept between calls.
//
// # Pipeline
//
//  1. [Decode] tries UTF-8, then ISO-8859-1.
//  2. [CheckStructure] runs the ordered file-level checks. The first failure
//     ends the run with a [StructuralError].
//  3. [Materialize] splits rows into fields aligned with the header, padding
//     short rows with "".
//  4. [ResolvePolicies] turns the header, the project [Profile] and the
//     user's [ColumnConfig] into one [ColumnPolicy] per column.
//  5. The semantic pass checks every cell and returns every [Finding].
//
// # Structural checks
//
// Evaluated in this order, first failure wins:
//
//	STR003 DisallowedDelimiter   any line contains ';'
//	STR004 HeaderSpacing         header contains ", "
//	STR005 MissingHeaderColumns  project-mandated header columns absent
//	STR006 EmptyColumnName       header has an empty name
//	STR007 RowOverflow           a row has more fields than the header
//	STR008 InvalidColumnPrefix   column lacks an accepted namespace prefix
//
// STR001 UnsupportedEncoding and STR002 EmptyFile precede them; STR009
// MalformedTable is raised by materialization.
//
// Row widths are measured with a plain comma scan, so a quoted value that
// contains a comma can push a row into RowOverflow. Materialization then
// splits quote-aware: a row whose quoted commas bring it from the header
// width down to fewer fields is padded with "" and gets no short-row
// warning. Blank lines count as one field in the width scan, so they are
// warned about as short rows and then skipped.
//
// # Ordering
//
// Findings are sorted by (row, column name). Large files are sharded across
// goroutines (see [Options]); the output is the same as a sequential run.
package validator
