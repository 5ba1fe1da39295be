package chapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_SplitsAtHeadings(t *testing.T) {
	paragraphs := Paragraphs([]string{
		"Глава 1",
		"Text for chapter 1",
		"Глава 1.1",
		"Text for chapter 1.1",
		"Глава 2",
		"Text for chapter 2",
	})

	chapters := Segment(paragraphs)
	require.Len(t, chapters, 3)

	assert.Equal(t, "Глава 1", chapters[0].LabelText)
	assert.Equal(t, []string{"Text for chapter 1"}, chapters[0].Texts())
	assert.Equal(t, "Глава 1.1", chapters[1].LabelText)
	assert.Equal(t, []string{"Text for chapter 1.1"}, chapters[1].Texts())
	assert.Equal(t, "Глава 2", chapters[2].LabelText)
	assert.Equal(t, []string{"Text for chapter 2"}, chapters[2].Texts())
}

func TestSegment_DiscardsPreamble(t *testing.T) {
	chapters := Segment(Paragraphs([]string{
		"Аннотация",
		"Вступительное слово",
		"Глава 1",
		"Текст",
	}))
	require.Len(t, chapters, 1)
	assert.Equal(t, []string{"Текст"}, chapters[0].Texts())
}

func TestSegment_NoHeadings(t *testing.T) {
	chapters := Segment(Paragraphs([]string{"Просто текст", "Ещё текст"}))
	assert.Empty(t, chapters)
}

func TestSegment_PreservesParagraphOrder(t *testing.T) {
	input := []string{
		"Глава 1", "a", "b", "c",
		"Глава 2", "d", "",
		"Глава 3", "e",
	}
	chapters := Segment(Paragraphs(input))
	require.Len(t, chapters, 3)

	var rebuilt []string
	for _, c := range chapters {
		rebuilt = append(rebuilt, c.Texts()...)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "", "e"}, rebuilt)
}

func TestSegment_HeadingParagraphsNeverInBodies(t *testing.T) {
	chapters := Segment(Paragraphs([]string{"Глава 1", "x", "Глава 2", "y"}))
	for _, c := range chapters {
		for _, p := range c.Paragraphs {
			assert.Nil(t, MatchHeading(p.Text))
		}
	}
}
