// Package diagnostic collects the problems found while building a rule set
// or checking a rule file, so that all of them are reported at once
// instead of stopping at the first.
package diagnostic
