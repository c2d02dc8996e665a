package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports

// Analyzer loads Go packages and collects their struct types.
type Analyzer struct {
	graph *TypeGraph
	// Dir is the working directory used to resolve patterns.
	Dir string
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{graph: NewTypeGraph()}
}

// LoadPackages loads the packages matching patterns and adds their
// exported struct types to the graph.
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

func (a *Analyzer) processPackage(pkg *packages.Package) {
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() {
			continue
		}

		st, ok := tn.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}

		id := TypeID{PkgPath: pkg.PkgPath, Name: name}
		a.graph.Structs[id] = &StructInfo{ID: id, Fields: structFields(st)}
		a.graph.Packages[pkg.PkgPath] = append(a.graph.Packages[pkg.PkgPath], id)
	}
}

func structFields(st *types.Struct) []FieldInfo {
	fields := make([]FieldInfo, 0, st.NumFields())

	for i := range st.NumFields() {
		f := st.Field(i)
		fields = append(fields, FieldInfo{
			Name:     f.Name(),
			Exported: f.Exported(),
			Type:     f.Type(),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: f.Embedded(),
		})
	}

	return fields
}
