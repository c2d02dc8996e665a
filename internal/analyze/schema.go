package analyze

import (
	"fmt"
	"go/types"
	"reflect"

	"github.com/hgrecco/dataframing/schema"
)

var namedRuntimeTypes = map[string]string{
	"time.Time":     "time",
	"time.Duration": "duration",
	"error":         "error",
}

// Schema builds the record schema of a struct in the graph. Fields of
// embedded structs without a tag are promoted, as with schema.FromType.
func (g *TypeGraph) Schema(id TypeID) (*schema.Schema, error) {
	info := g.Struct(id)
	if info == nil {
		return nil, fmt.Errorf("struct %s not found", id)
	}

	var fields []schema.Field
	collectSchemaFields(info.Fields, &fields)

	return schema.New(id.Name, fields...)
}

func collectSchemaFields(infos []FieldInfo, out *[]schema.Field) {
	for i := range infos {
		fi := &infos[i]

		name, ok := fi.RecordName()
		if !ok {
			continue
		}

		if fi.Embedded && !fi.HasTag("df") && !fi.HasTag("json") {
			if st, isStruct := fi.Type.Underlying().(*types.Struct); isStruct {
				collectSchemaFields(structFields(st), out)
				continue
			}
		}

		if !fi.Exported {
			continue
		}

		*out = append(*out, schema.Field{
			Name:     name,
			Type:     runtimeType(fi.Type),
			TypeName: types.TypeString(fi.Type, (*types.Package).Name),
		})
	}
}

// runtimeType maps predeclared basic types and a few well known named
// types to their reflect.Type. Other types have no runtime value here and
// yield nil.
func runtimeType(t types.Type) reflect.Type {
	name := types.TypeString(t, nil)
	if alias, ok := namedRuntimeTypes[name]; ok {
		name = alias
	} else if _, isBasic := t.(*types.Basic); !isBasic {
		return nil
	}

	rt, err := schema.ParseType(name)
	if err != nil {
		return nil
	}

	return rt
}

// LoadSchema loads the package of ref ("import/path.TypeName") and returns
// the schema of the named struct.
func LoadSchema(ref string) (*schema.Schema, error) {
	id, err := ParseTypeID(ref)
	if err != nil {
		return nil, err
	}

	graph, err := NewAnalyzer().LoadPackages(id.PkgPath)
	if err != nil {
		return nil, err
	}

	return graph.Schema(id)
}
