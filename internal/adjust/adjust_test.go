package adjust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoosts(t *testing.T) {
	t.Run("Should parse valid entries and lower-case phrases", func(t *testing.T) {
		got, skipped := ParseBoosts([]string{"Kingdom of God=3.5", " grace = 2 ", "mercy=0"})
		assert.Empty(t, skipped)
		assert.Equal(t, map[string]float64{"kingdom of god": 3.5, "grace": 2, "mercy": 0}, got)
	})

	t.Run("Should skip malformed entries and report them", func(t *testing.T) {
		got, skipped := ParseBoosts([]string{"grace", "=2", "hope=", "love=abc", "joy=-1", "faith=NaN", "peace=1.5"})
		assert.Equal(t, map[string]float64{"peace": 1.5}, got)
		require.Len(t, skipped, 6)
		assert.Equal(t, 0, skipped[0].Index)
		assert.Equal(t, "grace", skipped[0].Entry)
		assert.Equal(t, 4, skipped[4].Index)
		assert.Contains(t, skipped[4].Error(), "negative")
	})

	t.Run("Should let later entries win", func(t *testing.T) {
		got, _ := ParseBoosts([]string{"grace=2", "GRACE=4"})
		assert.Equal(t, 4.0, got["grace"])
	})
}

func TestParseAdjustments(t *testing.T) {
	t.Run("Should parse signed and fractional deltas", func(t *testing.T) {
		got, skipped := ParseAdjustments([]string{"grace=+3", "amen=-2", "hope=1.6", "Zion=0"})
		assert.Empty(t, skipped)
		assert.Equal(t, map[string]int{"grace": 3, "amen": -2, "hope": 2, "zion": 0}, got)
	})

	t.Run("Should skip malformed entries", func(t *testing.T) {
		got, skipped := ParseAdjustments([]string{"grace", "love=lots", "joy=Inf"})
		assert.Empty(t, got)
		assert.Len(t, skipped, 3)
	})

	t.Run("Should split at the last equals sign", func(t *testing.T) {
		got, skipped := ParseAdjustments([]string{"a=b=2"})
		assert.Empty(t, skipped)
		assert.Equal(t, 2, got["a=b"])
	})
}

func TestDefaultBoosts(t *testing.T) {
	first := DefaultBoosts()
	assert.Equal(t, 3.0, first["kingdom of god"])
	assert.Equal(t, 2.0, first["grace"])

	first["grace"] = 99
	assert.Equal(t, 2.0, DefaultBoosts()["grace"], "copies must be independent")
}
