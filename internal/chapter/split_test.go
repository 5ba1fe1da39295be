package chapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitInTwo_BalancesByCharacterWeight(t *testing.T) {
	// One long paragraph followed by several short ones: a count
	// midpoint would cut after paragraph 2, weight cuts after 1.
	paragraphs := Paragraphs([]string{
		strings.Repeat("а", 400),
		"коротко",
		"коротко",
		"коротко",
	})

	first, second, err := SplitInTwo(paragraphs)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 3)
}

func TestSplitInTwo_NeitherHalfEmpty(t *testing.T) {
	// All the weight sits in the first paragraph; the clamp must still
	// leave the second half non-empty.
	first, second, err := SplitInTwo(Paragraphs([]string{strings.Repeat("б", 100), "x"}))
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}

func TestSplitInTwo_ConcatenationReproducesInput(t *testing.T) {
	input := []string{"один", "", "два", "три длинный текст", "четыре", "пять"}
	first, second, err := SplitInTwo(Paragraphs(input))
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)

	var rebuilt []string
	for _, p := range first {
		rebuilt = append(rebuilt, p.Text)
	}
	for _, p := range second {
		rebuilt = append(rebuilt, p.Text)
	}
	assert.Equal(t, input, rebuilt)
}

func TestSplitInTwo_BlankParagraphsGetUnitWeight(t *testing.T) {
	first, second, err := SplitInTwo(Paragraphs([]string{"", "", "", ""}))
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
}

func TestSplitInTwo_TooShort(t *testing.T) {
	_, _, err := SplitInTwo(nil)
	assert.ErrorIs(t, err, ErrTooShort)

	_, _, err = SplitInTwo(Paragraphs([]string{"единственный абзац"}))
	assert.ErrorIs(t, err, ErrTooShort)
}
