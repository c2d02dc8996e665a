// Package tableio reads and writes record tables.
//
// Three file formats are supported, chosen by extension:
//
//	.json   a table document {"columns": [...], "rows": [[...]], "attrs": {...}}
//	.jsonl  one JSON object per line (also .ndjson)
//	.csv    a header row followed by one row per record
//
// Only the table document keeps attributes and column order exactly. When
// Options.UseHash is set, Save stores a content digest under attrs.HASH and
// Load refuses documents whose digest is missing or does not match.
//
// ReadSQL and WriteSQL move tables through database/sql; any registered
// driver can be used.
package tableio
