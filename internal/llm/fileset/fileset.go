// Package fileset fixes the per-file response convention the model is asked
// to follow and parses it back into a path -> content mapping.
//
// The format is line-oriented:
//
//	===FILE: relative/path.ext===
//	<full file content>
//	===END===
//
// Prose outside blocks is ignored. Marker lines tolerate trailing
// whitespace. A response with zero blocks, a marker with an empty path, a
// missing ===END===, or a duplicate path is rejected rather than silently
// producing an empty result.
package fileset

import (
	"strings"

	"codefactory/internal/apperrors"
	"codefactory/internal/models"
)

const (
	markerPrefix = "===FILE:"
	markerSuffix = "==="
	endMarker    = "===END==="
)

// Parse extracts the file blocks from a raw model response.
func Parse(response string) (models.FileSet, error) {
	body := stripOuterFence(response)
	lines := strings.Split(body, "\n")

	files := models.FileSet{}
	var (
		inBlock bool
		path    string
		content []string
	)

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")

		switch {
		case !inBlock && strings.HasPrefix(line, markerPrefix):
			p, err := parseMarker(line)
			if err != nil {
				return nil, err
			}
			if _, dup := files[p]; dup {
				return nil, apperrors.New(apperrors.KindGenerationParse, "duplicate file block for %q", p)
			}
			inBlock = true
			path = p
			content = content[:0]

		case inBlock && line == endMarker:
			files[path] = strings.Join(content, "\n")
			inBlock = false

		case inBlock && strings.HasPrefix(line, markerPrefix):
			return nil, apperrors.New(apperrors.KindGenerationParse, "file block %q has no %s marker", path, endMarker)

		case inBlock:
			content = append(content, raw)

		default:
			// prose between blocks, ignored
		}
	}

	if inBlock {
		return nil, apperrors.New(apperrors.KindGenerationParse, "file block %q has no %s marker", path, endMarker)
	}
	if len(files) == 0 {
		return nil, apperrors.New(apperrors.KindGenerationParse, "response contains no recognizable file blocks")
	}
	return files, nil
}

// Format serializes a file set back into the delimited format. For any f,
// Parse(Format(f)) reproduces f byte for byte.
func Format(files models.FileSet) string {
	var b strings.Builder
	for _, path := range files.Paths() {
		b.WriteString(markerPrefix)
		b.WriteString(" ")
		b.WriteString(path)
		b.WriteString(markerSuffix)
		b.WriteString("\n")
		b.WriteString(files[path])
		b.WriteString("\n")
		b.WriteString(endMarker)
		b.WriteString("\n")
	}
	return b.String()
}

func parseMarker(line string) (string, error) {
	rest := strings.TrimPrefix(line, markerPrefix)
	if !strings.HasSuffix(rest, markerSuffix) {
		return "", apperrors.New(apperrors.KindGenerationParse, "malformed file marker %q", line)
	}
	path := strings.TrimSpace(strings.TrimSuffix(rest, markerSuffix))
	if path == "" {
		return "", apperrors.New(apperrors.KindGenerationParse, "file marker with empty path: %q", line)
	}
	return path, nil
}

// stripOuterFence removes one whole-response markdown code fence, which
// models add despite instructions not to.
func stripOuterFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	first := strings.Index(trimmed, "\n")
	if first == -1 {
		return s
	}
	rest := trimmed[first+1:]
	if !strings.HasSuffix(strings.TrimSpace(rest), "```") {
		return s
	}
	rest = strings.TrimSpace(rest)
	return strings.TrimSpace(strings.TrimSuffix(rest, "```"))
}
