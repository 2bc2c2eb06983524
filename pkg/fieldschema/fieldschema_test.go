package fieldschema

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownType(t *testing.T) {
	defs, ok := Get("Rideshare")
	require.True(t, ok)
	require.NotEmpty(t, defs)

	keys := make(map[string]bool, len(defs))
	for _, d := range defs {
		assert.NotEmpty(t, d.Key)
		assert.NotEmpty(t, d.Label)
		assert.NotEmpty(t, d.Type)
		assert.False(t, keys[d.Key], "duplicate key %q", d.Key)
		keys[d.Key] = true
	}
	assert.True(t, keys["typeOfAssault"])
}

func TestGet_UnknownType(t *testing.T) {
	_, ok := Get("Asbestos")
	assert.False(t, ok)
}

func TestTypes_SortedAndComplete(t *testing.T) {
	types := Types()
	assert.True(t, sort.StringsAreSorted(types))
	assert.Contains(t, types, "Hair Relaxer")
	assert.Contains(t, types, "AFFF")

	for _, typ := range types {
		defs, ok := Get(typ)
		assert.True(t, ok)
		assert.NotEmpty(t, defs, "type %q has no fields", typ)
	}
}
