// Package rulefile declares rule sets in YAML instead of Go code.
//
// A rule file names a source and a target schema and lists one rule per
// target field (or group of fields). Each rule is one of four kinds:
//
//	field:  copy a source field
//	value:  a literal
//	call:   a function from a funcs.Registry applied to args
//	ref:    a named computation declared under let
//
// Example:
//
//	version: "1"
//	source: {name: Person, fields: [full_name]}
//	target: {name: Named, fields: [last_name, {name: first_name, type: string}]}
//	let:
//	  parts: {call: split_trim, args: [{field: full_name}, ","]}
//	rules:
//	  - target: [last_name, first_name]
//	    ref: parts
//	  - target: greeting
//	    value: hi
//
// Call and ref expressions accept an index or attr selector. A rule with
// several targets unpacks the elements of a call or ref result. A let
// computation is evaluated once per record no matter how many rules use it.
//
// Schemas are declared by a fields list, where each item is a name or a
// {name, type} map, or by go: "import/path.Type", which loads the fields
// of that struct from source.
package rulefile
