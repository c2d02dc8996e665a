// Package validate checks tables and records against a schema.
//
// Every declared field must be present and hold a value of the declared
// type. Untyped fields accept anything. A nil value is accepted for types
// that can be nil (pointers, interfaces, slices, maps). Numbers must match
// the declared kind exactly unless WithConvertible is given, in which case
// any value that schema.Coerce can store without loss is accepted,
// including text cells such as "42" for an int field.
package validate
