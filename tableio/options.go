package tableio

// Options configures reading and writing of table documents.
type Options struct {
	// UseHash stores a content digest on save and verifies it on load.
	UseHash bool
}

// DefaultOptions returns options with hashing enabled.
func DefaultOptions() Options {
	return Options{UseHash: true}
}
