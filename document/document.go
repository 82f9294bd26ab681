// Package document holds immutable text snapshots and the atomic
// multi-document edit builder used to commit generated code.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/textutil"
)

var (
	// ErrOutOfBounds is returned when a position does not exist in a snapshot.
	ErrOutOfBounds = errors.New("position outside document bounds")
	// ErrStaleSnapshot is returned when a document changed after it was read.
	ErrStaleSnapshot = errors.New("document changed since it was analyzed")
)

// Document is an immutable snapshot of a file's text.
type Document struct {
	Path string

	text        string
	lineStarts  []int
	eol         string
	fingerprint uint64
	indent      string
}

// New creates a snapshot of text for path.
func New(path, text string) *Document {
	d := &Document{
		Path: path,
		text: text,
		eol:  textutil.DetectEOL(text),
	}
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	d.fingerprint, _ = Fingerprint([]byte(text))
	return d
}

// Text returns the full document text.
func (d *Document) Text() string { return d.text }

// EOL returns the document's line ending.
func (d *Document) EOL() string { return d.eol }

// Fingerprint identifies the snapshot's content.
func (d *Document) Fingerprint() uint64 { return d.fingerprint }

// LineCount returns the number of lines (a trailing newline starts an empty line).
func (d *Document) LineCount() int { return len(d.lineStarts) }

// LineText returns line without its line ending. Out-of-range lines are empty.
func (d *Document) LineText(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	return strings.TrimSuffix(d.text[start:end], "\r")
}

// IndentUnit returns one level of indentation as used by the document.
func (d *Document) IndentUnit() string {
	if d.indent == "" {
		d.indent = textutil.IndentUnit(d.text)
	}
	return d.indent
}

// OffsetAt converts pos to a byte offset.
func (d *Document) OffsetAt(pos languages.Position) (int, error) {
	if pos.Line < 0 || pos.Line >= len(d.lineStarts) || pos.Character < 0 {
		return 0, fmt.Errorf("%w: %d:%d in %s", ErrOutOfBounds, pos.Line, pos.Character, d.Path)
	}
	start := d.lineStarts[pos.Line]
	end := len(d.text)
	if pos.Line+1 < len(d.lineStarts) {
		end = d.lineStarts[pos.Line+1]
	}
	if start+pos.Character > end {
		return 0, fmt.Errorf("%w: %d:%d in %s", ErrOutOfBounds, pos.Line, pos.Character, d.Path)
	}
	return start + pos.Character, nil
}

// PositionAt converts a byte offset to a position, clamping to the document.
func (d *Document) PositionAt(offset int) languages.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	return languages.Position{Line: line, Character: offset - d.lineStarts[line]}
}

// EndPosition returns the position just past the last character.
func (d *Document) EndPosition() languages.Position {
	return d.PositionAt(len(d.text))
}
