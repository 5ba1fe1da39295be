package chapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanArtifacts_LatinWordsWithPositions(t *testing.T) {
	occ := ScanArtifacts([]string{
		"Привет Hello мир",
		"Это Test документ",
		"Другие слова: World, Hello",
	})

	assert.Equal(t, []string{"Hello", "Test", "World"}, occ.Words())
	assert.Equal(t, []Position{{1, 8}, {3, 22}}, occ["Hello"])
	assert.Equal(t, []Position{{2, 5}}, occ["Test"])
	assert.Equal(t, []Position{{3, 15}}, occ["World"])
}

func TestScanArtifacts_MixedScriptToken(t *testing.T) {
	occ := ScanArtifacts([]string{"смеshанное слово"})

	// The mixed run is recorded, and so is the pure-Latin run inside it.
	require.Contains(t, occ, "смеshанное")
	assert.Equal(t, []Position{{1, 1}}, occ["смеshанное"])
	require.Contains(t, occ, "sh")
	assert.Equal(t, []Position{{1, 4}}, occ["sh"])
}

func TestScanArtifacts_CaseSensitiveWords(t *testing.T) {
	occ := ScanArtifacts([]string{"Hello hello HELLO"})

	assert.Equal(t, []string{"HELLO", "Hello", "hello"}, occ.Words())
}

func TestScanArtifacts_PureCyrillicIgnored(t *testing.T) {
	occ := ScanArtifacts([]string{"Обычный русский текст, без вкраплений."})
	assert.Empty(t, occ)
}

func TestScanArtifacts_OffsetsCountRunes(t *testing.T) {
	// Cyrillic characters are multi-byte; offsets must still count
	// characters, not bytes.
	occ := ScanArtifacts([]string{"ааа test"})
	assert.Equal(t, []Position{{1, 5}}, occ["test"])
}
