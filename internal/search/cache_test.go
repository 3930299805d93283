package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsearch/internal/content"
)

func TestCacheKeyNormalization(t *testing.T) {
	assert.Equal(t, Key("React", content.TypeAny), Key("  react ", content.TypeAny))
	assert.NotEqual(t, Key("react", content.TypeAny), Key("react", content.TypeTechnology))
}

func TestCacheHitAndExpiry(t *testing.T) {
	c := NewCache(time.Hour, time.Minute)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }

	key := Key("react", content.TypeTechnology)
	want := []Result{{DocumentID: "technology:react", Type: content.TypeTechnology, Score: 0.9}}
	c.Put(key, want, c.TTLFor(content.TypeTechnology))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Just before expiry.
	now = now.Add(time.Hour - time.Second)
	_, ok = c.Get(key)
	assert.True(t, ok)

	// Past expiry the entry is gone.
	now = now.Add(2 * time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestCacheTTLAsymmetry(t *testing.T) {
	c := NewCache(6*time.Hour, 10*time.Minute)

	// Structured records live long; anything that can see a note is short.
	assert.Equal(t, 6*time.Hour, c.TTLFor(content.TypeTechnology))
	assert.Equal(t, 6*time.Hour, c.TTLFor(content.TypeProject))
	assert.Equal(t, 10*time.Minute, c.TTLFor(content.TypeNote))
	assert.Equal(t, 10*time.Minute, c.TTLFor(content.TypeAny))
}

func TestCacheClear(t *testing.T) {
	c := NewCache(0, 0)
	key := Key("go", content.TypeAny)
	c.Put(key, []Result{{DocumentID: "technology:go"}}, time.Hour)
	c.Clear()
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(0, 0)
	_, ok := c.Get(Key("nothing", content.TypeAny))
	assert.False(t, ok)
}
