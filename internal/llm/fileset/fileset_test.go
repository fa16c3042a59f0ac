package fileset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"codefactory/internal/apperrors"
	"codefactory/internal/models"
)

func TestParseSingleBlock(t *testing.T) {
	response := "===FILE: main.go===\npackage main\n\nfunc main() {}\n===END===\n"

	files, err := Parse(response)

	assert.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "package main\n\nfunc main() {}", files["main.go"])
}

func TestParseMultipleBlocksIgnoresProse(t *testing.T) {
	response := "Here are the changes you asked for:\n" +
		"===FILE: a.txt===\nalpha\n===END===\n" +
		"And a second file:\n" +
		"===FILE: docs/b.txt===\nbeta\n===END===\n" +
		"Let me know if anything else is needed."

	files, err := Parse(response)

	assert.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, "alpha", files["a.txt"])
	assert.Equal(t, "beta", files["docs/b.txt"])
}

func TestParseToleratesMarkerTrailingWhitespace(t *testing.T) {
	response := "===FILE: a.txt===  \t\r\ncontent\n===END===   \r\n"

	files, err := Parse(response)

	assert.NoError(t, err)
	assert.Equal(t, "content", files["a.txt"])
}

func TestParseEmptyContentBlock(t *testing.T) {
	files, err := Parse("===FILE: empty.txt===\n\n===END===\n")

	assert.NoError(t, err)
	assert.Equal(t, "", files["empty.txt"])
}

func TestParseStripsWholeResponseFence(t *testing.T) {
	response := "```\n===FILE: a.txt===\nalpha\n===END===\n```"

	files, err := Parse(response)

	assert.NoError(t, err)
	assert.Equal(t, "alpha", files["a.txt"])
}

func TestParseRoundTrip(t *testing.T) {
	original := models.FileSet{
		"main.go":          "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}",
		"docs/notes.md":    "# Notes\n\nSome text with a trailing newline.\n",
		"empty.txt":        "",
		"config/app.yaml":  "key: value\nlist:\n  - one\n  - two",
		"nested/deep/f.go": "package deep",
	}

	parsed, err := Parse(Format(original))

	assert.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"no blocks at all", "I could not produce any files for this request."},
		{"empty response", ""},
		{"missing end marker", "===FILE: a.txt===\ncontent without terminator\n"},
		{"marker inside open block", "===FILE: a.txt===\ncontent\n===FILE: b.txt===\nmore\n===END===\n"},
		{"empty path", "===FILE: ===\ncontent\n===END===\n"},
		{"malformed marker", "===FILE: a.txt\ncontent\n===END===\n"},
		{"duplicate path", "===FILE: a.txt===\none\n===END===\n===FILE: a.txt===\ntwo\n===END===\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files, err := Parse(tc.response)

			assert.Error(t, err)
			assert.Nil(t, files)
			assert.True(t, errors.Is(err, apperrors.GenerationParse))
		})
	}
}

func TestFormatOrdersByPath(t *testing.T) {
	out := Format(models.FileSet{"b.txt": "2", "a.txt": "1"})

	assert.Equal(t, "===FILE: a.txt===\n1\n===END===\n===FILE: b.txt===\n2\n===END===\n", out)
}
