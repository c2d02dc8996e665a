package transform

import (
	"strings"
	"sync/atomic"

	"github.com/hgrecco/dataframing/schema"
)

func mustNames(name string, fields ...string) *schema.Schema {
	s, err := schema.Names(name, fields...)
	if err != nil {
		panic(err)
	}

	return s
}

// splitter splits "Last, First" and counts its invocations.
type splitter struct {
	calls atomic.Int64
}

func (s *splitter) split(full string) []string {
	s.calls.Add(1)

	parts := strings.Split(full, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

func initial(name string) string {
	if name == "" {
		return ""
	}

	return name[:1] + "."
}
