package file

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFile is the name of the TOML file inside the data directory.
const configFile = "config.toml"

// ConfigStore persists configuration as a TOML file. Keys use dot
// notation ("embedding.provider"); on disk each dotted prefix becomes
// a TOML table, so the file stays hand-editable.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens the store rooted at configDir, creating the
// directory when missing. An empty configDir selects the per-OS app
// data directory.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		configDir = domain.AppDataDir()
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		path:   filepath.Join(configDir, configFile),
		values: make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the raw value stored at key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

// GetString returns the string at key, or "" for missing or
// non-string values.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt returns the integer at key. TOML decodes integers as int64;
// both int and int64 are accepted. Anything else yields 0.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// GetBool returns the boolean at key, or false when absent.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice returns the strings at key. TOML arrays decode as
// []any; non-string elements are dropped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set stores value at key and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.flush()
}

// Reset discards every stored value and persists the empty state.
// Callers re-seed defaults afterwards.
func (s *ConfigStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]any)
	return s.flush()
}

// Save rewrites the file from the in-memory values.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// flush writes the TOML file atomically; the caller holds the lock.
// Dotted keys are expanded into tables first so the file reads
// naturally.
func (s *ConfigStore) flush() error {
	data, err := toml.Marshal(expand(s.values))
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the TOML file, replacing any in-memory values. A missing
// file loads as empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.values = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var nested map[string]any
	if err := toml.Unmarshal(data, &nested); err != nil {
		return err
	}

	s.values = flatten(nested, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// flatten converts nested tables to dot-notation keys, so
// {"embedding": {"provider": "x"}} becomes {"embedding.provider": "x"}.
func flatten(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any, len(nested))
	for key, value := range nested {
		if prefix != "" {
			key = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok {
			maps.Copy(flat, flatten(sub, key))
			continue
		}
		flat[key] = value
	}
	return flat
}

// expand is the inverse of flatten: each dot in a key opens a nested
// table. Keys are walked in sorted order, so when a scalar and a table
// collide on the same name the table wins.
func expand(flat map[string]any) map[string]any {
	nested := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		node := nested
		for _, part := range parts[:len(parts)-1] {
			sub, ok := node[part].(map[string]any)
			if !ok {
				sub = make(map[string]any)
				node[part] = sub
			}
			node = sub
		}
		node[parts[len(parts)-1]] = flat[key]
	}
	return nested
}
