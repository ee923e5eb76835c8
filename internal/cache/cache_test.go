package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetThenGet(t *testing.T) {
	t.Parallel()

	c, err := New(0)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	_, ok := c.Get("/faq")
	require.False(t, ok)

	e := NewEntry([]byte("<html></html>"))
	c.Set("/faq", e)
	got, ok := c.Get("/faq")
	require.True(t, ok)
	require.Equal(t, e, got)

	c.Clear()
	_, ok = c.Get("/faq")
	require.False(t, ok)
}

func TestNilCacheNeverHits(t *testing.T) {
	t.Parallel()

	var c *PageCache
	c.Set("/", NewEntry([]byte("x")))
	_, ok := c.Get("/")
	require.False(t, ok)
	c.Clear()
	c.Close()
}

func TestETagIsStableAndWeak(t *testing.T) {
	t.Parallel()

	a := ETag([]byte("same"))
	require.Equal(t, a, ETag([]byte("same")))
	require.NotEqual(t, a, ETag([]byte("other")))
	require.True(t, strings.HasPrefix(a, `W/"`))
	require.Len(t, a, len(`W/""`)+64)
}
