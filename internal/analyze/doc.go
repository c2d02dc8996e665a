// Package analyze loads Go packages with golang.org/x/tools/go/packages and
// describes their exported struct types, so that record schemas can be
// declared by pointing at a struct in source code instead of listing its
// fields.
package analyze
