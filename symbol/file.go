package symbol

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/textutil"
)

// ErrNoPosition is returned when no insertion point can be derived.
var ErrNoPosition = errors.New("no insertion position")

// Options tune position computation for one file.
type Options struct {
	// IndentUnit overrides the indentation detected from the document.
	IndentUnit string
	// IndentNamespaces is used when no namespace in the file has members to
	// learn the convention from.
	IndentNamespaces bool
}

// SourceFile is a document snapshot together with its classified symbol tree.
type SourceFile struct {
	Doc  *document.Document
	Root *Symbol

	opts  Options
	enums map[string]bool
}

// NewSourceFile mirrors the discovered tree rooted at root into Symbols.
func NewSourceFile(doc *document.Document, root *languages.CodeRange, opts Options) (*SourceFile, error) {
	f := &SourceFile{Doc: doc, opts: opts, enums: make(map[string]bool)}
	sym, err := f.build(root, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to classify symbols of %s: %w", doc.Path, err)
	}
	f.Root = sym
	return f, nil
}

func (f *SourceFile) build(cr *languages.CodeRange, parent *Symbol) (*Symbol, error) {
	s, err := newSymbol(f.Doc, cr, parent)
	if err != nil {
		return nil, err
	}
	s.file = f
	if cr.Kind == languages.KindEnum && cr.Name != "" {
		f.enums[cr.Name] = true
		f.enums[s.QualifiedName()] = true
	}
	for _, child := range cr.Children {
		c, err := f.build(child, s)
		if err != nil {
			return nil, err
		}
		s.Children = append(s.Children, c)
	}
	return s, nil
}

// Path returns the document path.
func (f *SourceFile) Path() string { return f.Doc.Path }

// IndentUnit returns one level of indentation for this file.
func (f *SourceFile) IndentUnit() string {
	if f.opts.IndentUnit != "" {
		return f.opts.IndentUnit
	}
	return f.Doc.IndentUnit()
}

// Enums returns the enum names declared in the file, plain and qualified.
func (f *SourceFile) Enums() map[string]bool { return f.enums }

// Walk visits every symbol below the root in document order.
// Returning false from fn skips the symbol's children.
func (f *SourceFile) Walk(fn func(*Symbol) bool) {
	var walk func(*Symbol)
	walk = func(s *Symbol) {
		for _, c := range s.Children {
			if fn(c) {
				walk(c)
			}
		}
	}
	walk(f.Root)
}

// SymbolAt returns the innermost symbol containing pos, or nil. When several
// siblings share a range ("int a, b;") the one whose name is under pos wins.
func (f *SourceFile) SymbolAt(pos languages.Position) *Symbol {
	var found *Symbol
	cur := f.Root
	for {
		var next *Symbol
		for _, c := range cur.Children {
			if !c.Contains(pos) {
				continue
			}
			if next == nil {
				next = c
			}
			if c.Code.SelectionRange.Contains(pos) {
				next = c
				break
			}
		}
		if next == nil {
			return found
		}
		found, cur = next, next
	}
}

// FindByName returns the first symbol whose qualified name is name or ends
// with "::"+name, e.g. "Widget::m_size".
func (f *SourceFile) FindByName(name string) *Symbol {
	name = strings.ReplaceAll(name, " ", "")
	var found *Symbol
	f.Walk(func(s *Symbol) bool {
		if found != nil {
			return false
		}
		q := s.QualifiedName()
		if q == name || strings.HasSuffix(q, "::"+name) {
			found = s
			return false
		}
		return true
	})
	return found
}

// FindDefinition returns the function definition in this file matching
// decl's qualified name and normalized signature, or nil.
func (f *SourceFile) FindDefinition(decl *Symbol) *Symbol {
	if decl == nil || !decl.IsFunction() {
		return nil
	}
	full := decl.QualifiedName()
	minimal := 1 + len(decl.Classes())
	if decl.qualifier != "" {
		minimal += strings.Count(stripTemplateArgs(decl.qualifier), "::") + 1
	}
	sig := decl.NormalizedSignature()

	var found *Symbol
	f.Walk(func(s *Symbol) bool {
		if found != nil {
			return false
		}
		if s == decl || (s.Doc.Path == decl.Doc.Path && s.start == decl.start) {
			return true
		}
		if !s.IsFunctionDefinition() || s.NormalizedSignature() != sig {
			return true
		}
		if namesMatch(s.QualifiedName(), full, minimal) {
			found = s
			return false
		}
		return true
	})
	return found
}

// namesMatch accepts a definition name equal to the declaration's full
// name, or a suffix of it that still names every enclosing class (the
// namespace may be opened by a using-directive).
func namesMatch(def, full string, minimal int) bool {
	if def == full {
		return true
	}
	return strings.HasSuffix(full, "::"+def) && strings.Count(def, "::")+1 >= minimal
}

// DefinitionAnchor describes where a new out-of-line definition belongs:
// the scope that declares it and its neighbouring declarations.
type DefinitionAnchor struct {
	Scope     *Symbol
	Preceding []*Symbol // nearest first
	Following []*Symbol // nearest first
}

// AnchorFor returns the anchor of an existing function declaration.
func AnchorFor(decl *Symbol) DefinitionAnchor {
	a := DefinitionAnchor{Scope: decl.Parent}
	if decl.Parent == nil {
		return a
	}
	var before, after []*Symbol
	seen := false
	for _, c := range decl.Parent.Children {
		if c == decl {
			seen = true
			continue
		}
		if !c.IsFunctionDeclaration() {
			continue
		}
		if seen {
			after = append(after, c)
		} else {
			before = append(before, c)
		}
	}
	slices.Reverse(before)
	a.Preceding, a.Following = before, after
	return a
}

// AnchorAt returns the anchor for a new member of scope declared at pos.
func AnchorAt(scope *Symbol, pos languages.Position) DefinitionAnchor {
	a := DefinitionAnchor{Scope: scope}
	for _, c := range scope.Children {
		if !c.IsFunctionDeclaration() {
			continue
		}
		if c.Code.Range.Start.Before(pos) {
			a.Preceding = append([]*Symbol{c}, a.Preceding...)
		} else {
			a.Following = append(a.Following, c)
		}
	}
	return a
}

// FindPositionForFunctionDefinition returns where the definition of decl
// goes in f. Definitions of neighbouring declarations are preferred, then
// fallback (the below-class position when f declares decl), then the end
// of the deepest matching namespace, then the end of the file.
func (f *SourceFile) FindPositionForFunctionDefinition(decl *Symbol, fallback *ProposedPosition) (ProposedPosition, error) {
	if decl == nil || !decl.IsFunction() {
		return ProposedPosition{}, fmt.Errorf("%w: not a function", ErrNoPosition)
	}
	return f.FindPositionForDefinition(AnchorFor(decl), fallback)
}

// FindPositionForDefinition is FindPositionForFunctionDefinition for an
// explicit anchor.
func (f *SourceFile) FindPositionForDefinition(a DefinitionAnchor, fallback *ProposedPosition) (ProposedPosition, error) {
	for _, p := range a.Preceding {
		if d := f.FindDefinition(p); d != nil {
			return f.positionAfterDefinition(d), nil
		}
	}
	for _, n := range a.Following {
		if d := f.FindDefinition(n); d != nil {
			return ProposedPosition{
				Position: f.Doc.PositionAt(d.start),
				Before:   true,
				Indent:   f.lineIndent(d.start),
			}, nil
		}
	}
	if fallback != nil {
		return *fallback, nil
	}

	var names []string
	if a.Scope != nil {
		names = a.Scope.Namespaces()
	}
	if ns, depth := f.deepestNamespace(names); ns != nil {
		return f.positionInNamespace(ns, names[depth:])
	}
	return ProposedPosition{
		Position:          f.Doc.EndPosition(),
		After:             true,
		AtEnd:             true,
		MissingNamespaces: names,
		IndentNamespaces:  f.namespaceIndented(nil),
	}, nil
}

// PositionBelow returns the position after the outermost class enclosing
// sym (or after sym itself outside classes), past the terminating ';'.
func (f *SourceFile) PositionBelow(sym *Symbol) ProposedPosition {
	outer := sym
	for outer.Parent != nil && outer.Parent.IsClassType() {
		outer = outer.Parent
	}
	off := f.afterStatement(f.skipSemicolon(outer.EndOffset()))
	pos := ProposedPosition{
		After:  true,
		Indent: f.lineIndent(outer.start),
	}
	if p := outer.Parent; p != nil && p.IsNamespace() {
		pos.ScopeIndent = f.lineIndent(p.start)
		off, pos.CloserGap, pos.CloserFollows = f.closerFollows(off, p.ClosingOffset())
	}
	pos.Position = f.Doc.PositionAt(off)
	return pos
}

func (f *SourceFile) positionAfterDefinition(d *Symbol) ProposedPosition {
	off := f.afterStatement(f.skipSemicolon(d.EndOffset()))
	return ProposedPosition{
		Position: f.Doc.PositionAt(off),
		After:    true,
		Indent:   f.lineIndent(d.start),
	}
}

func (f *SourceFile) positionInNamespace(ns *Symbol, missing []string) (ProposedPosition, error) {
	open, closeAt := ns.BodyOffset(), ns.ClosingOffset()
	if open < 0 || closeAt < 0 {
		return ProposedPosition{}, fmt.Errorf("%w: namespace %s has no body", ErrNoPosition, ns.Name())
	}
	nsIndent := f.lineIndent(ns.start)
	indented := f.namespaceIndented(ns)

	if len(ns.Children) == 0 {
		indent := nsIndent
		if indented {
			indent += f.IndentUnit()
		}
		off, gap, closer := f.closerFollows(open+1, closeAt)
		return ProposedPosition{
			Position:          f.Doc.PositionAt(off),
			After:             true,
			NextTo:            true,
			EmptyScope:        true,
			CloserFollows:     closer,
			CloserGap:         gap,
			Indent:            indent,
			ScopeIndent:       nsIndent,
			MissingNamespaces: missing,
			IndentNamespaces:  indented,
		}, nil
	}

	last := ns.Children[len(ns.Children)-1]
	off, gap, closer := f.closerFollows(f.afterStatement(f.skipSemicolon(last.EndOffset())), closeAt)
	return ProposedPosition{
		Position:          f.Doc.PositionAt(off),
		After:             true,
		CloserFollows:     closer,
		CloserGap:         gap,
		Indent:            f.lineIndent(last.start),
		ScopeIndent:       nsIndent,
		MissingNamespaces: missing,
		IndentNamespaces:  indented,
	}, nil
}

// namespaceIndented reports whether namespace bodies are indented, judged by
// ns, then by the first namespace in the file with a member on a line of its
// own, then by the configured default.
func (f *SourceFile) namespaceIndented(ns *Symbol) bool {
	judge := func(n *Symbol) (indented, ok bool) {
		line := f.Doc.PositionAt(n.start).Line
		for _, c := range n.Children {
			if f.Doc.PositionAt(c.start).Line != line {
				return len(f.lineIndent(c.start)) > len(f.lineIndent(n.start)), true
			}
		}
		return false, false
	}
	if ns != nil {
		if indented, ok := judge(ns); ok {
			return indented
		}
	}
	var indented, found bool
	f.Walk(func(s *Symbol) bool {
		if !found && s.IsNamespace() {
			indented, found = judge(s)
		}
		return !found
	})
	if found {
		return indented
	}
	return f.opts.IndentNamespaces
}

// deepestNamespace follows names down the namespace blocks of f. It returns
// the innermost matching block and how many names it covers.
func (f *SourceFile) deepestNamespace(names []string) (*Symbol, int) {
	var match *Symbol
	cur, depth := f.Root, 0
	for depth < len(names) {
		var next *Symbol
		nextDepth := depth
		for _, c := range cur.Children {
			if !c.IsNamespace() || c.Name() == "" {
				continue
			}
			comps := strings.Split(c.Name(), "::")
			if depth+len(comps) <= len(names) && slices.Equal(comps, names[depth:depth+len(comps)]) {
				next, nextDepth = c, depth+len(comps)
			}
		}
		if next == nil {
			break
		}
		match, cur, depth = next, next, nextDepth
	}
	return match, depth
}

func (f *SourceFile) lineIndent(offset int) string {
	return textutil.LeadingWhitespace(f.Doc.LineText(f.Doc.PositionAt(offset).Line))
}

// afterStatement moves offset to the end of its line when only whitespace
// or a comment follows, so trailing comments stay with their statement.
func (f *SourceFile) afterStatement(offset int) int {
	text := f.Doc.Text()
	lineEnd := len(text)
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		lineEnd = offset + i
		if lineEnd > offset && text[lineEnd-1] == '\r' {
			lineEnd--
		}
	}
	if strings.TrimSpace(textutil.MaskComments(text[offset:lineEnd])) == "" {
		return lineEnd
	}
	return offset
}

// skipSemicolon moves offset past a ';' separated from it only by blanks.
func (f *SourceFile) skipSemicolon(offset int) int {
	text := f.Doc.Text()
	i := offset
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i < len(text) && text[i] == ';' {
		return i + 1
	}
	return offset
}

// closerFollows reports whether the scope closer at closeAt is on the same
// line as offset. When only blanks or comments separate them the insertion
// moves to the end of the last non-blank text before the closer, and gap is
// the blank run between there and the closer, which the insertion replaces.
func (f *SourceFile) closerFollows(offset, closeAt int) (at, gap int, follows bool) {
	if closeAt < 0 || !f.sameLine(offset, closeAt) {
		return offset, 0, false
	}
	text := f.Doc.Text()
	if strings.TrimSpace(textutil.MaskComments(text[offset:closeAt])) != "" {
		return offset, 0, true
	}
	at = closeAt
	for at > offset && (text[at-1] == ' ' || text[at-1] == '\t') {
		at--
	}
	return at, closeAt - at, true
}

// sameLine reports whether no line break separates from and to.
func (f *SourceFile) sameLine(from, to int) bool {
	if to < from {
		return false
	}
	return !strings.Contains(f.Doc.Text()[from:to], "\n")
}
