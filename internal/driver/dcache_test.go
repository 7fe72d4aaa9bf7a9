package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kwarg/internal/decl"
	"kwarg/internal/rewrite"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache("kwarg", t.TempDir())
	require.NoError(t, err)

	key := Key(defaultOptions(), nil, []byte("content"))
	var out DiskPayload
	hit, err := cache.Get(key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	in := &DiskPayload{Output: "f(1)", Decls: []string{"f(a = 1)"}, Stats: rewrite.Stats{Expanded: 1, Defaulted: 1}}
	require.NoError(t, cache.Put(key, in))

	hit, err = cache.Get(key, &out)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "f(1)", out.Output)
	assert.Equal(t, []string{"f(a = 1)"}, out.Decls)
	assert.Equal(t, 1, out.Stats.Expanded)

	require.NoError(t, cache.DropAll())
	hit, err = cache.Get(key, &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKeyCoversInputs(t *testing.T) {
	base := defaultOptions()
	k := Key(base, [][]byte{[]byte("declare f();")}, []byte("f!()"))

	assert.Equal(t, k, Key(base, [][]byte{[]byte("declare f();")}, []byte("f!()")))
	assert.NotEqual(t, k, Key(base, nil, []byte("f!()")))
	assert.NotEqual(t, k, Key(base, [][]byte{[]byte("declare f();")}, []byte("f!( )")))

	strict := base
	strict.Policy = decl.PolicyError
	assert.NotEqual(t, k, Key(strict, [][]byte{[]byte("declare f();")}, []byte("f!()")))

	// chunk boundaries are length-prefixed
	assert.NotEqual(t,
		Key(base, [][]byte{[]byte("ab")}, []byte("c")),
		Key(base, [][]byte{[]byte("a")}, []byte("bc")))
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	hit, err := c.Get(CacheKey{}, &DiskPayload{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, c.Put(CacheKey{}, &DiskPayload{}))
	assert.Empty(t, c.Dir())
}
