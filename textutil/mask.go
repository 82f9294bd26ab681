// Package textutil provides length-preserving masking and small text helpers
// used to scan C++ declarations without a full parser.
//
// Every mask function returns a string with exactly the same byte length as its
// input, so offsets computed on masked text are valid in the original text.
package textutil

import "strings"

// Mask blanks everything strictly inside matched open/close pairs. The outermost
// delimiters of each top-level pair are kept, nested delimiters are blanked with
// the rest of the interior, and unbalanced closing delimiters become a space.
func Mask(text string, open, close byte) string {
	if text == "" {
		return text
	}
	out := []byte(text)
	depth := 0
	for i := 0; i < len(out); i++ {
		switch out[i] {
		case open:
			if depth > 0 {
				out[i] = ' '
			}
			depth++
		case close:
			switch {
			case depth == 0:
				out[i] = ' '
			case depth == 1:
				depth--
			default:
				depth--
				out[i] = ' '
			}
		default:
			if depth > 0 {
				out[i] = ' '
			}
		}
	}
	return string(out)
}

// MaskParentheses masks the interior of (...) pairs.
func MaskParentheses(text string) string { return Mask(text, '(', ')') }

// MaskBraces masks the interior of {...} pairs.
func MaskBraces(text string) string { return Mask(text, '{', '}') }

// MaskBrackets masks the interior of [...] pairs.
func MaskBrackets(text string) string { return Mask(text, '[', ']') }

// MaskAngleBrackets masks the interior of <...> pairs.
func MaskAngleBrackets(text string) string { return Mask(text, '<', '>') }

// MaskComments blanks line and block comments. Newlines inside block comments
// are kept so line numbers stay intact. String literals are skipped, not masked.
func MaskComments(text string) string {
	return scan(text, true, false)
}

// MaskQuotes blanks the interior of string, character and raw string literals,
// keeping the quotes themselves. Comments are skipped, not masked.
func MaskQuotes(text string) string {
	return scan(text, false, true)
}

// MaskNonCode blanks comments and literal interiors in one pass.
func MaskNonCode(text string) string {
	return scan(text, true, true)
}

// MaskDelimiters applies parentheses, brace, bracket and angle bracket masking
// on top of MaskNonCode. The result only shows top-level structure.
func MaskDelimiters(text string) string {
	masked := MaskNonCode(text)
	masked = MaskParentheses(masked)
	masked = MaskBraces(masked)
	masked = MaskBrackets(masked)
	return MaskAngleBrackets(masked)
}

func scan(text string, comments, quotes bool) string {
	out := []byte(text)
	blank := func(from, to int, enabled bool) {
		if !enabled {
			return
		}
		for k := from; k < to && k < len(out); k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += i
			}
			blank(i, end, comments)
			i = end
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text)
			} else {
				end += i + 4
			}
			blank(i, end, comments)
			i = end
		case c == '"' && isRawStringStart(text, i):
			open := strings.IndexByte(text[i+1:], '(')
			if open < 0 {
				i++
				continue
			}
			delim := text[i+1 : i+1+open]
			closing := ")" + delim + "\""
			end := strings.Index(text[i+open+2:], closing)
			if end < 0 {
				end = len(text) - 1
			} else {
				end += i + open + 2 + len(closing) - 1
			}
			blank(i+1, end, quotes)
			i = end + 1
		case c == '"' || (c == '\'' && !isDigitSeparator(text, i)):
			end := closingQuote(text, i)
			blank(i+1, end, quotes)
			i = end + 1
		default:
			i++
		}
	}
	return string(out)
}

// closingQuote returns the index of the quote that terminates the literal
// starting at i, or the last index of the line when it is unterminated.
func closingQuote(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case q:
			return j
		case '\n':
			return j - 1
		}
	}
	return len(text) - 1
}

func isRawStringStart(text string, i int) bool {
	if i == 0 || text[i-1] != 'R' {
		return false
	}
	if i == 1 {
		return true
	}
	prev := text[i-2]
	return !IsIdentChar(prev) || prev == '8' || prev == 'L' || prev == 'u' || prev == 'U'
}

func isDigitSeparator(text string, i int) bool {
	return i > 0 && i+1 < len(text) && isDigit(text[i-1]) && IsIdentChar(text[i+1])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// IsIdentChar reports whether c can appear in a C++ identifier.
func IsIdentChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
