// Package csv parses delimiter-separated client exports into records.
//
// It exists because spreadsheet exports are not RFC 4180: delimiters vary
// between comma and semicolon depending on locale, line endings mix \n,
// \r\n and bare \r within one file, fields carry stray whitespace, and
// quoting is frequently broken mid-file. The standard library reader
// rejects or mangles such input; this package accepts all of it.
//
// The pipeline is three small steps:
//
//  1. [DetectDelimiter] picks comma or semicolon from the first line.
//  2. [Parse] tokenizes the text into rows of trimmed fields. It never
//     returns an error; malformed quoting degrades into best-effort
//     field content instead of failing the whole file.
//  3. [MapRecords] zips the header row against each data row into
//     [Record] values keyed by lower-cased header name.
//
// Parsing is a single synchronous pass with no shared state, so it is
// safe to call from any goroutine.
package csv
