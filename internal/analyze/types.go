package analyze

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"
)

// TypeID identifies a named type by package import path and name.
type TypeID struct {
	PkgPath string
	Name    string
}

func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// ParseTypeID splits "import/path.Name" at the last dot.
func ParseTypeID(s string) (TypeID, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return TypeID{}, fmt.Errorf("type reference %q: want import/path.TypeName", s)
	}

	return TypeID{PkgPath: s[:i], Name: s[i+1:]}, nil
}

// StructInfo describes an exported named struct type.
type StructInfo struct {
	ID     TypeID
	Fields []FieldInfo
}

// FieldInfo describes one field of a struct as seen by the type checker.
type FieldInfo struct {
	Name     string            // Go field name
	Exported bool              // Whether the field is exported
	Type     types.Type        // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded
}

// RecordName returns the record field name: the `df` tag, then the `json`
// tag, then the Go name. The second result is false for fields that are
// excluded with "-".
func (f *FieldInfo) RecordName() (string, bool) {
	for _, key := range []string{"df", "json"} {
		tag, ok := f.Tag.Lookup(key)
		if !ok {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}

		if name != "" {
			return name, true
		}
	}

	return f.Name, true
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	_, ok := f.Tag.Lookup(key)
	return ok
}

// TypeGraph holds the struct types found in the loaded packages.
type TypeGraph struct {
	Structs  map[TypeID]*StructInfo
	Packages map[string][]TypeID
}

// NewTypeGraph creates an empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Structs:  make(map[TypeID]*StructInfo),
		Packages: make(map[string][]TypeID),
	}
}

// Struct returns the struct registered under id, or nil.
func (g *TypeGraph) Struct(id TypeID) *StructInfo {
	return g.Structs[id]
}
