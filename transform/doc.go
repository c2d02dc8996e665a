// Package transform declares how every field of a target record is
// computed from the fields of a source record, and applies that
// declaration to single records, record slices and tables.
//
// Rules are authored in one of two ways:
//
//   - Build hands a construction block a source proxy, whose fields are
//     checked against the source schema, and a target proxy whose
//     assignments become rules. Plain function calls are deferred with Use
//     and their results split with Index, Attr or SplitInto.
//   - Wrap (or Typed) accepts a function of the form
//     func(ctx context.Context, src S, dst *T) error, where S and T are
//     struct types describing the source and target schemas.
//
// A deferred computation runs at most once per record no matter how many
// rules reference it. Batches can be spread over a worker pool; output
// order always equals input order.
package transform
