package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	require.NoError(t, store.Set("fresh", 1), "a fresh store must accept writes")
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key", "value"))

	val, ok := store.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("name", "trove"))
	assert.Equal(t, "trove", store.GetString("name"))
	assert.Equal(t, "", store.GetString("missing"))

	require.NoError(t, store.Set("number", 42))
	assert.Equal(t, "", store.GetString("number"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("int", 42))
	assert.Equal(t, 42, store.GetInt("int"))

	require.NoError(t, store.Set("int64", int64(99)))
	assert.Equal(t, 99, store.GetInt("int64"))

	require.NoError(t, store.Set("float", 3.0))
	assert.Equal(t, 3, store.GetInt("float"))

	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("on", true))
	assert.True(t, store.GetBool("on"))

	require.NoError(t, store.Set("off", false))
	assert.False(t, store.GetBool("off"))

	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("strings", []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("strings"))

	require.NoError(t, store.Set("anys", []any{"x", "y", 3}))
	assert.Equal(t, []string{"x", "y"}, store.GetStringSlice("anys"))

	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_Reset(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key", "value"))
	require.NoError(t, store.Reset())

	_, ok := store.Get("key")
	assert.False(t, ok)
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "key-" + string(rune('a'+i))
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_, _ = store.Get(key)
		}()
	}
	wg.Wait()
}
