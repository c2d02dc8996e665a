// Package observability builds the logger and metrics registry used by
// the command line tool.
package observability
