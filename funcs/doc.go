// Package funcs provides named functions for rules declared outside Go
// code, such as rule files. Every registered value is a plain Go function
// that transform.Use accepts.
package funcs
