// Package match ranks field names by similarity to an unknown name.
//
// It backs the "did you mean" suggestions attached to unknown-field
// errors: names are normalized (case-folded, separators removed), compared
// with a Levenshtein distance and the closest ones are returned.
package match
