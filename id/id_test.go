package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndSorted(t *testing.T) {
	g := NewSeeded(42)

	ids := make([]string, 0, 1000)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v := g.New()
		require.True(t, Valid(v), "invalid ulid %q", v)
		require.False(t, seen[v], "duplicate id %q", v)
		seen[v] = true
		ids = append(ids, v)
	}

	assert.True(t, sort.StringsAreSorted(ids))
}

func TestPackageNew(t *testing.T) {
	a := New()
	b := New()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("not-a-ulid"))
}
