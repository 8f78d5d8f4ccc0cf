package driven

// ConfigStore reads and writes application configuration as a flat
// key/value map with dotted keys ("embedding.provider"). Implementations
// decide where the values live and how they persist.
type ConfigStore interface {
	// Get returns the raw value at key and whether the key exists.
	Get(key string) (any, bool)

	// Typed lookups return the zero value when the key is absent or
	// holds a different type.
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value at key and persists immediately.
	Set(key string, value any) error

	// Reset discards every stored value and persists the empty state.
	// Callers re-seed defaults afterwards.
	Reset() error

	// Save and Load sync the in-memory map with the backing storage.
	Save() error
	Load() error

	// Path names the backing location, for display to the user.
	Path() string
}
