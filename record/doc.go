// Package record holds the values a transformation reads and writes: a
// Record is a mutable mapping from field name to value, a Table is a
// columnar collection of records sharing the same columns.
package record
