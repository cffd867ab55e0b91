package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileAlternativeIDs(t *testing.T) {
	t.Run("all ids owned", func(t *testing.T) {
		kept, changed := reconcileAlternativeIDs(
			[]string{"OL2W", "OL3W"},
			map[string]bool{"OL1W": true, "OL2W": true, "OL3W": true},
		)
		assert.False(t, changed)
		assert.Equal(t, []string{"OL2W", "OL3W"}, kept)
	})

	t.Run("id claimed by another record is dropped", func(t *testing.T) {
		kept, changed := reconcileAlternativeIDs(
			[]string{"OL2W", "OL3W"},
			map[string]bool{"OL1W": true, "OL3W": true},
		)
		assert.True(t, changed)
		assert.Equal(t, []string{"OL3W"}, kept)
	})

	t.Run("order preserved", func(t *testing.T) {
		kept, changed := reconcileAlternativeIDs(
			[]string{"OL4W", "OL2W", "OL9W"},
			map[string]bool{"OL2W": true, "OL4W": true, "OL9W": true},
		)
		assert.False(t, changed)
		assert.Equal(t, []string{"OL4W", "OL2W", "OL9W"}, kept)
	})

	t.Run("empty array stays empty", func(t *testing.T) {
		kept, changed := reconcileAlternativeIDs(nil, map[string]bool{"OL1W": true})
		assert.False(t, changed)
		assert.Empty(t, kept)
	})
}
