package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	spec, err := Decode([]byte(`{"slides":[
		{"title":"Einleitung","content":["**Punkt** eins","Punkt zwei"],"notes":"Hallo","image_search_query":"sonnenaufgang"},
		{"content":"einzeln"},
		{"title":" ","content":[1, true, "x"]}
	]}`))
	require.NoError(t, err)
	require.Len(t, spec.Slides, 3)

	first := spec.Slides[0]
	assert.Equal(t, "Einleitung", first.DisplayTitle())
	assert.Equal(t, Lines{"**Punkt** eins", "Punkt zwei"}, first.Content)
	assert.Equal(t, "Hallo", first.Notes)
	assert.Equal(t, "sonnenaufgang", first.ImageSearchQuery)

	assert.Equal(t, UntitledSlide, spec.Slides[1].DisplayTitle())
	assert.Equal(t, Lines{"einzeln"}, spec.Slides[1].Content)

	assert.Equal(t, "Kein Titel", spec.Slides[2].DisplayTitle())
	assert.Equal(t, Lines{"1", "true", "x"}, spec.Slides[2].Content)
}

func TestDecodeWithoutSlidesIsEmpty(t *testing.T) {
	spec, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, spec.Slides)

	spec, err = Decode([]byte(`{"slides":null,"thema":"x"}`))
	require.NoError(t, err)
	assert.Empty(t, spec.Slides)
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`Hier sind Ihre Folien`))
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	tests := map[string]string{
		"":                                   "",
		"einfach":                            "einfach",
		"**fett** und _kursiv_":              "fett und kursiv",
		"[Link](https://example.org) danach": "Link danach",
		"`code` im Text":                     "code im Text",
		"Zeile eins\nZeile zwei":             "Zeile eins Zeile zwei",
		"- Listenpunkt":                      "Listenpunkt",
		"# Überschrift":                      "Überschrift",
		"<https://example.org>":              "https://example.org",
		"a < b & c":                          "a < b & c",
		"2024. Das Jahr der Wende":           "2024. Das Jahr der Wende",
		"3) Drittens":                        "3) Drittens",
		"1. eins\n2. zwei":                   "1. eins 2. zwei",
	}
	for input, want := range tests {
		assert.Equal(t, want, PlainText(input), input)
	}
}
