package rulefile

import (
	"errors"
	"fmt"

	"github.com/hgrecco/dataframing/schema"
)

var (
	ErrSchemaUndeclared = errors.New("schema needs either fields or go")
	ErrSchemaAmbiguous  = errors.New("schema cannot have both fields and go")
)

// Build returns the schema declared by d.
func (d SchemaDef) Build(load SchemaLoader) (*schema.Schema, error) {
	switch {
	case d.Go != "" && len(d.Fields) > 0:
		return nil, fmt.Errorf("schema %s: %w", d.Name, ErrSchemaAmbiguous)
	case d.Go != "":
		if load == nil {
			return nil, fmt.Errorf("schema %s: no loader for %s", d.Name, d.Go)
		}

		s, err := load(d.Go)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", d.Name, err)
		}

		return s, nil
	case len(d.Fields) == 0:
		return nil, fmt.Errorf("schema %s: %w", d.Name, ErrSchemaUndeclared)
	}

	fields := make([]schema.Field, len(d.Fields))
	for i, fd := range d.Fields {
		t, err := schema.ParseType(fd.Type)
		if err != nil {
			return nil, fmt.Errorf("schema %s: field %s: %w", d.Name, fd.Name, err)
		}

		fields[i] = schema.Typed(fd.Name, t)
	}

	return schema.New(d.Name, fields...)
}

// Schemas builds the source and target schemas of f.
func (f *File) Schemas(opts ...Option) (src, dst *schema.Schema, err error) {
	o := buildOptions(opts)

	src, srcErr := f.Source.Build(o.Loader)
	dst, dstErr := f.Target.Build(o.Loader)

	if err := errors.Join(srcErr, dstErr); err != nil {
		return nil, nil, err
	}

	return src, dst, nil
}
