package symbol

import (
	"fmt"

	"github.com/roveo/cppgen/languages"
)

// ProposedPosition is an insertion point plus the placement flags the
// formatter needs. It is only valid for the snapshot it was computed against.
type ProposedPosition struct {
	languages.Position

	// Before means the new text goes in front of the content at Position.
	Before bool
	// After means the new text goes after the content ending at Position.
	After bool
	// NextTo suppresses the blank line between the new text and its neighbour.
	NextTo bool
	// EmptyScope means Position is just inside the opening brace of a scope
	// with no members.
	EmptyScope bool
	// AtEnd means Position is the end of the document.
	AtEnd bool
	// CloserFollows is set when the scope's closing brace follows Position on
	// the same line and must be pushed to a line of its own.
	CloserFollows bool
	// CloserGap is the number of blanks between Position and that closer.
	CloserGap int

	// Indent is the indentation of the inserted lines.
	Indent string
	// ScopeIndent is the indentation of the enclosing scope's braces.
	ScopeIndent string
	// AccessLabel, when set, is emitted as "label:" before the new text.
	AccessLabel string
	// MissingNamespaces lists the namespaces (outermost first) the new text
	// must be wrapped in because the target lacks them.
	MissingNamespaces []string
	// IndentNamespaces tells whether the bodies of MissingNamespaces are
	// indented, following the file's existing namespaces.
	IndentNamespaces bool
}

// Twin returns the position for text placed right after text inserted at p,
// at the same pre-edit anchor.
func (p ProposedPosition) Twin() ProposedPosition {
	t := p
	t.Before = false
	t.After = true
	t.NextTo = true
	t.EmptyScope = false
	t.AccessLabel = ""
	return t
}

// Pair splits p into positions for two texts inserted back to back at the
// same anchor, with no blank line between them.
func (p ProposedPosition) Pair() (first, second ProposedPosition) {
	if p.Before {
		first, second = p, p
		first.NextTo = true
		second.AccessLabel = ""
		return first, second
	}
	return p, p.Twin()
}

func (p ProposedPosition) String() string {
	flags := ""
	for _, f := range []struct {
		set  bool
		name string
	}{{p.Before, "before"}, {p.After, "after"}, {p.NextTo, "next-to"}, {p.EmptyScope, "empty"}, {p.AtEnd, "eof"}} {
		if f.set {
			flags += " " + f.name
		}
	}
	return fmt.Sprintf("%d:%d%s", p.Line, p.Character, flags)
}
