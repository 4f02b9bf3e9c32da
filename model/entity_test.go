package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Run("Lowercases the name", func(t *testing.T) {
		assert.Equal(t, "ada lovelace", NormalizeName("Ada Lovelace"), "Expected name to be lowercased")
	})

	t.Run("Trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "acme corp", NormalizeName("  Acme Corp \t"), "Expected surrounding whitespace to be trimmed")
	})

	t.Run("Keeps inner whitespace", func(t *testing.T) {
		assert.Equal(t, "new  york", NormalizeName("New  York"), "Expected inner whitespace to be preserved")
	})

	t.Run("Empty name stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeName(""), "Expected empty name to stay empty")
	})

	t.Run("Whitespace-only name becomes empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeName("   "), "Expected whitespace-only name to become empty")
	})

	t.Run("Already normalized name is unchanged", func(t *testing.T) {
		assert.Equal(t, "graph theory", NormalizeName("graph theory"), "Expected normalized name to be unchanged")
	})

	t.Run("Handles unicode names", func(t *testing.T) {
		assert.Equal(t, "münchen", NormalizeName("München"), "Expected unicode name to be lowercased")
	})
}
