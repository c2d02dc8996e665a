package tableio

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/zeebo/xxh3"

	"github.com/hgrecco/dataframing/record"
)

// HashKey is the attribute holding the content digest of a saved table.
const HashKey = "HASH"

// Hash returns the hex encoded xxh3-128 digest of the columns, rows and
// attributes of tbl, ignoring any stored HashKey attribute. Cells are
// hashed by their JSON form, so a table hashes the same before saving and
// after loading.
func Hash(tbl *record.Table) (string, error) {
	data, err := canonical(newDoc(tbl))
	if err != nil {
		return "", fmt.Errorf("hash table: %w", err)
	}

	h := xxh3.Hash128(data)

	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo), nil
}

// Verify checks the digest stored in the attributes of tbl.
func Verify(tbl *record.Table) error {
	stored, ok := tbl.Attrs[HashKey].(string)
	if !ok || stored == "" {
		return ErrHashMissing
	}

	computed, err := Hash(tbl)
	if err != nil {
		return err
	}

	if stored != computed {
		return &HashError{Stored: stored, Computed: computed}
	}

	return nil
}

// canonical encodes v, decodes it generically and encodes it again, which
// sorts object keys and settles number formatting.
func canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
