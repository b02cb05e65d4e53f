package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
)

func TestCacheHitAfterPut(t *testing.T) {
	c := New(nil, "extract:", time.Hour)
	ctx := context.Background()

	stored := model.ExtractionResult{
		Text:       "POFUDUK\nFİYAT: 150 TL",
		Fields:     map[string]string{"brand": "POFUDUK"},
		Confidence: 0.95,
		Method:     "remote",
	}
	c.Put(ctx, "hash-1", stored)

	got, ok := c.Get(ctx, "hash-1")
	require.True(t, ok)
	assert.Equal(t, stored.Text, got.Text)
	assert.Equal(t, stored.Fields, got.Fields)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Zero(t, misses)
}

func TestCacheMissOnUnknownHash(t *testing.T) {
	c := New(nil, "extract:", time.Hour)

	_, ok := c.Get(context.Background(), "never-stored")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Equal(t, int64(1), misses)
}

func TestCacheLocalEntryExpires(t *testing.T) {
	c := New(nil, "extract:", 10*time.Millisecond)
	ctx := context.Background()

	c.Put(ctx, "hash-1", model.ExtractionResult{Text: "short lived"})
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "hash-1")
	assert.False(t, ok)
}

func TestCacheDistinctHashesAreIndependent(t *testing.T) {
	c := New(nil, "extract:", time.Hour)
	ctx := context.Background()

	c.Put(ctx, "hash-a", model.ExtractionResult{Text: "a"})
	c.Put(ctx, "hash-b", model.ExtractionResult{Text: "b"})

	a, ok := c.Get(ctx, "hash-a")
	require.True(t, ok)
	b, ok := c.Get(ctx, "hash-b")
	require.True(t, ok)
	assert.Equal(t, "a", a.Text)
	assert.Equal(t, "b", b.Text)
}
