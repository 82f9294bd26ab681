package languages

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Position represents a position in a text document (LSP-compliant, 0-based).
// Character is a byte offset within the line.
type Position struct {
	Line      int `json:"line"`      // 0-based line number
	Character int `json:"character"` // 0-based byte offset in the line
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	return p.Line < other.Line || (p.Line == other.Line && p.Character < other.Character)
}

// Range represents a range in a text document (LSP-compliant, 0-based)
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos lies inside r (end inclusive).
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// Kind tags a discovered code range.
type Kind string

const (
	KindFile        Kind = "file"
	KindNamespace   Kind = "namespace"
	KindClass       Kind = "class"
	KindStruct      Kind = "struct"
	KindUnion       Kind = "union"
	KindEnum        Kind = "enum"
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindConstructor Kind = "constructor"
	KindDestructor  Kind = "destructor"
	KindOperator    Kind = "operator"
	KindField       Kind = "field"
	KindVariable    Kind = "variable"
	KindTypeAlias   Kind = "type_alias"
)

// IsFunctionLike reports whether k names something callable.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunction, KindMethod, KindConstructor, KindDestructor, KindOperator:
		return true
	}
	return false
}

// IsClassLike reports whether k names a class, struct or union.
func (k Kind) IsClassLike() bool {
	return k == KindClass || k == KindStruct || k == KindUnion
}

// CodeRange is one node of a discovered symbol tree. Children are owned by
// their parent; Parent is a back-reference used for lookups only.
type CodeRange struct {
	Name           string
	Detail         string // e.g. "template" when the range starts at a template header
	Kind           Kind
	Range          Range
	SelectionRange Range
	Children       []*CodeRange
	Parent         *CodeRange `json:"-"`
}

// AddChild appends child and points its parent link at c.
func (c *CodeRange) AddChild(child *CodeRange) {
	child.Parent = c
	c.Children = append(c.Children, child)
}

// Walk visits c and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (c *CodeRange) Walk(fn func(*CodeRange) bool) {
	if !fn(c) {
		return
	}
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// Language defines how symbols are discovered for a particular language
type Language interface {
	// Name returns the language identifier (e.g., "cpp")
	Name() string

	// Extensions returns the file extensions this language handles (e.g., [".hpp"])
	Extensions() []string

	// Discover parses content and returns the symbol tree rooted at a KindFile node
	Discover(ctx context.Context, content []byte) (*CodeRange, error)
}

// TreeSitterLanguage is an optional interface for languages that use tree-sitter
type TreeSitterLanguage interface {
	Language
	// TreeSitterLang returns the tree-sitter language for parsing
	TreeSitterLang() *sitter.Language
}
