package textutil

import (
	"strings"
)

// DefaultIndent is used when a document gives no indentation hint.
const DefaultIndent = "    "

// DetectEOL returns "\r\n" when the text uses CRLF line endings, "\n" otherwise.
func DetectEOL(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// NormalizeEOL rewrites every line ending in text to eol.
func NormalizeEOL(text, eol string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if eol == "\n" {
		return text
	}
	return strings.ReplaceAll(text, "\n", eol)
}

// LeadingWhitespace returns the run of spaces and tabs at the start of line.
func LeadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// IndentUnit guesses one level of indentation from the document text:
// a tab when indented lines start with tabs, otherwise the smallest run
// of leading spaces. DefaultIndent when nothing is indented.
func IndentUnit(text string) string {
	smallest := 0
	for _, line := range strings.Split(MaskComments(text), "\n") {
		ws := LeadingWhitespace(line)
		if ws == "" || strings.TrimSpace(line) == "" {
			continue
		}
		if ws[0] == '\t' {
			return "\t"
		}
		if n := len(ws); smallest == 0 || n < smallest {
			smallest = n
		}
	}
	if smallest == 0 {
		return DefaultIndent
	}
	return strings.Repeat(" ", smallest)
}

// Reindent prefixes every non-empty line of text with indent. Lines holding
// only whitespace are prefixed too, so an indented blank body line keeps its
// place relative to the new indentation.
func Reindent(text, indent string) string {
	if indent == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// CollapseSpaces trims s and replaces every whitespace run with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HasWord reports whether word occurs in s as a whole identifier.
func HasWord(s, word string) bool {
	return WordIndex(s, word) >= 0
}

// WordIndex returns the byte offset of the first whole-identifier occurrence
// of word in s, or -1.
func WordIndex(s, word string) int {
	if word == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(word)
		if (i == 0 || !IsIdentChar(s[i-1])) && (end == len(s) || !IsIdentChar(s[end])) {
			return i
		}
		from = i + 1
	}
}

// RemoveWord deletes every whole-identifier occurrence of word from s along
// with one following space, then collapses whitespace.
func RemoveWord(s, word string) string {
	for {
		i := WordIndex(s, word)
		if i < 0 {
			return CollapseSpaces(s)
		}
		s = s[:i] + s[i+len(word):]
	}
}

// TopLevelSplit splits s at sep characters that are not nested inside
// parentheses, braces, brackets or angle brackets.
func TopLevelSplit(s string, sep byte) []string {
	masked := MaskDelimiters(s)
	var parts []string
	start := 0
	for i := 0; i < len(masked); i++ {
		if masked[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// LastIdentifier returns the trailing identifier of s and its offset,
// ignoring trailing whitespace. ok is false when s does not end in one.
func LastIdentifier(s string) (ident string, offset int, ok bool) {
	end := len(strings.TrimRight(s, " \t\r\n"))
	start := end
	for start > 0 && IsIdentChar(s[start-1]) {
		start--
	}
	if start == end || isDigit(s[start]) {
		return "", -1, false
	}
	return s[start:end], start, true
}
