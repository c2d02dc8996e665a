// Package schema describes the shape of a record: a name plus an ordered
// list of uniquely named fields, each optionally carrying a Go type.
//
// A Schema can be declared field by field or derived from a Go struct type,
// in which case the field name comes from the `df` struct tag, then the
// `json` tag, then the Go field name. Schemas are immutable once built and
// safe to share between goroutines.
package schema
