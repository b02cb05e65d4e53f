package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
)

type fakeFinder struct {
	exact map[string]int64
	fold  map[string]int64
	rows  []model.ProductRow
	err   error

	exactCalls int
	foldCalls  int
	listCalls  int
}

func key(code, color, brand string) string { return code + "|" + color + "|" + brand }

func (f *fakeFinder) FindProductExact(_ context.Context, code, color, brand string) (int64, error) {
	f.exactCalls++
	if f.err != nil {
		return 0, f.err
	}
	return f.exact[key(code, color, brand)], nil
}

func (f *fakeFinder) FindProductFold(_ context.Context, code, color, brand string) (int64, error) {
	f.foldCalls++
	if f.err != nil {
		return 0, f.err
	}
	return f.fold[key(code, color, brand)], nil
}

func (f *fakeFinder) ListProductsByCodeBrand(_ context.Context, code, brand string) ([]model.ProductRow, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestResolveExactMatchWins(t *testing.T) {
	finder := &fakeFinder{
		exact: map[string]int64{key("AB-100", "siyah", "POFUDUK"): 7},
		fold:  map[string]int64{key("AB-100", "siyah", "POFUDUK"): 9},
	}
	resolver := NewResolver(finder)

	id, err := resolver.Resolve(context.Background(), "AB-100", "siyah", "POFUDUK")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, 1, finder.exactCalls)
	assert.Zero(t, finder.foldCalls)
	assert.Zero(t, finder.listCalls)
}

func TestResolveCaseInsensitiveFallback(t *testing.T) {
	finder := &fakeFinder{
		fold: map[string]int64{key("AB-100", "SIYAH", "POFUDUK"): 12},
	}
	resolver := NewResolver(finder)

	id, err := resolver.Resolve(context.Background(), "AB-100", "SIYAH", "POFUDUK")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, 1, finder.exactCalls)
	assert.Equal(t, 1, finder.foldCalls)
	assert.Zero(t, finder.listCalls)
}

func TestResolveFuzzyColorMatch(t *testing.T) {
	finder := &fakeFinder{
		rows: []model.ProductRow{
			{ID: 3, Code: "AB-100", Color: "beyaz", BrandName: "POFUDUK"},
			{ID: 4, Code: "AB-100", Color: "black", BrandName: "POFUDUK"},
		},
	}
	resolver := NewResolver(finder)

	id, err := resolver.Resolve(context.Background(), "AB-100", "blck", "POFUDUK")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestResolveFirstFuzzyRowWins(t *testing.T) {
	// Deterministic: rows are scanned in repository order.
	finder := &fakeFinder{
		rows: []model.ProductRow{
			{ID: 20, Code: "AB-100", Color: "grey", BrandName: "POFUDUK"},
			{ID: 21, Code: "AB-100", Color: "gray", BrandName: "POFUDUK"},
		},
	}
	resolver := NewResolver(finder)

	id, err := resolver.Resolve(context.Background(), "AB-100", "gry", "POFUDUK")
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)
}

func TestResolveNoMatchMeansCreate(t *testing.T) {
	finder := &fakeFinder{
		rows: []model.ProductRow{
			{ID: 5, Code: "AB-100", Color: "bordo", BrandName: "POFUDUK"},
		},
	}
	resolver := NewResolver(finder)

	id, err := resolver.Resolve(context.Background(), "AB-100", "blue", "POFUDUK")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestResolvePropagatesLookupError(t *testing.T) {
	finder := &fakeFinder{err: errors.New("connection refused")}
	resolver := NewResolver(finder)

	_, err := resolver.Resolve(context.Background(), "AB-100", "siyah", "POFUDUK")
	assert.Error(t, err)
}
