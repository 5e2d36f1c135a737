package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/helpscan/internal/model"
)

func TestKey(t *testing.T) {
	a := Key(NamespaceProbe, "git", "remote")
	b := Key(NamespaceProbe, "git", "remote")
	c := Key(NamespaceProbe, "git remote")
	d := Key(NamespaceSegment, "git", "remote")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "parts must not collide with their concatenation")
	assert.NotEqual(t, a, d)
	assert.Contains(t, a, "helpscan:v1:probe:")
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("usage: git")
	require.NoError(t, c.Set("k", value, 0))
	value[0] = 'X'

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "usage: git", string(got), "stored value must be a copy")
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_ExpiryAndPrune(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	require.NoError(t, c.Set(Key(NamespaceProbe, "a"), []byte("alive"), 0))
	require.NoError(t, c.Set(Key(NamespaceProbe, "b"), []byte("stale"), time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	got, ok := c.Get(Key(NamespaceProbe, "a"))
	require.True(t, ok)
	assert.Equal(t, "alive", string(got))

	removed, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok = c.Get(Key(NamespaceProbe, "b"))
	assert.False(t, ok)

	assert.NoError(t, c.Delete("missing"))
}

func TestLayeredCache_PromotesHits(t *testing.T) {
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(t.TempDir(), time.Hour)
	layered := NewLayeredCache(memory, disk)

	require.NoError(t, disk.Set("k", []byte("v"), 0))
	_, ok := memory.Get("k")
	require.False(t, ok)

	got, ok := layered.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	_, ok = memory.Get("k")
	assert.True(t, ok, "disk hit should be promoted to memory")

	require.NoError(t, layered.Delete("k"))
	_, ok = layered.Get("k")
	assert.False(t, ok)
}

func TestSQLiteCache(t *testing.T) {
	c, err := OpenSQLiteCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set("k", []byte("v1"), 0))
	require.NoError(t, c.Set("k", []byte("v2"), 0))
	require.NoError(t, c.Set("old", []byte("x"), time.Nanosecond))
	time.Sleep(2 * time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", string(got))

	_, ok = c.Get("old")
	assert.False(t, ok)

	removed, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestNew(t *testing.T) {
	c, err := New(model.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(model.CacheConfig{Enabled: true, Backend: "disk", Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &LayeredCache{}, c)

	_, err = New(model.CacheConfig{Enabled: true, Backend: "redis"})
	assert.Error(t, err)
}

func TestLayeredCache_CloseClosesSQLite(t *testing.T) {
	c, err := New(model.CacheConfig{Enabled: true, Backend: "sqlite", Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour})
	require.NoError(t, err)
	require.NoError(t, c.Set("k", []byte("v"), 0))

	layered, ok := c.(*LayeredCache)
	require.True(t, ok)
	assert.NoError(t, layered.Close())
}
