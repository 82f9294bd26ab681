// Package cpp discovers C++ symbol trees with the tree-sitter C++ grammar.
package cpp

import (
	"context"
	"fmt"
	"strings"

	"github.com/roveo/cppgen/languages"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

func init() {
	languages.Register(&Language{})
}

var _ languages.TreeSitterLanguage = (*Language)(nil)

// Language implements symbol discovery for C and C++ headers and sources
type Language struct{}

func (l *Language) Name() string { return "cpp" }

func (l *Language) Extensions() []string {
	return []string{".h", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".tpp", ".ipp", ".c", ".cc", ".cpp", ".cxx", ".c++"}
}

func (l *Language) TreeSitterLang() *sitter.Language {
	return cpp.GetLanguage()
}

func (l *Language) Discover(ctx context.Context, content []byte) (*languages.CodeRange, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(l.TreeSitterLang())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse C++ file: %w", err)
	}
	defer tree.Close()

	node := tree.RootNode()
	root := &languages.CodeRange{
		Kind:  languages.KindFile,
		Range: languages.NodeRange(node),
	}
	d := &discoverer{content: content}
	d.walk(node, scope{node: root})
	return root, nil
}

// scope is the CodeRange new symbols attach to. className is set inside
// class bodies and is used to recognize constructors.
type scope struct {
	node      *languages.CodeRange
	className string
}

type discoverer struct {
	content []byte
}

func (d *discoverer) walk(body *sitter.Node, s scope) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		d.visit(body.NamedChild(i), s, nil)
	}
}

func (d *discoverer) visit(n *sitter.Node, s scope, tmpl *sitter.Node) {
	switch n.Type() {
	case "namespace_definition":
		d.namespace(n, s)
	case "template_declaration":
		if tmpl == nil {
			tmpl = n
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "template_parameter_list" || child.Type() == "requires_clause" {
				continue
			}
			d.visit(child, s, tmpl)
		}
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		d.classLike(n, s, tmpl)
	case "function_definition":
		if decl := n.ChildByFieldName("declarator"); decl != nil {
			d.function(n, decl, s, tmpl)
		}
	case "declaration", "field_declaration":
		d.declaration(n, s, tmpl)
	case "linkage_specification":
		if body := n.ChildByFieldName("body"); body != nil {
			if body.Type() == "declaration_list" {
				d.walk(body, s)
			} else {
				d.visit(body, s, nil)
			}
		}
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		d.walk(n, s)
	}
}

func (d *discoverer) namespace(n *sitter.Node, s scope) {
	cr := &languages.CodeRange{
		Kind:           languages.KindNamespace,
		Range:          languages.NodeRange(n),
		SelectionRange: languages.NodeRange(n),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cr.Name = name.Content(d.content)
		cr.SelectionRange = languages.NodeRange(name)
	}
	s.node.AddChild(cr)
	if body := n.ChildByFieldName("body"); body != nil {
		d.walk(body, scope{node: cr})
	}
}

func (d *discoverer) classLike(n *sitter.Node, s scope, tmpl *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil {
		// forward declaration or elaborated type specifier
		return
	}

	kind := languages.KindClass
	switch n.Type() {
	case "struct_specifier":
		kind = languages.KindStruct
	case "union_specifier":
		kind = languages.KindUnion
	case "enum_specifier":
		kind = languages.KindEnum
	}

	cr := &languages.CodeRange{
		Kind:           kind,
		Range:          d.span(tmpl, n),
		SelectionRange: languages.NodeRange(n),
	}
	if tmpl != nil {
		cr.Detail = "template"
	}
	if name := n.ChildByFieldName("name"); name != nil {
		cr.Name = name.Content(d.content)
		cr.SelectionRange = languages.NodeRange(name)
	}
	s.node.AddChild(cr)

	if kind == languages.KindEnum {
		return
	}
	d.walk(body, scope{node: cr, className: stripTemplateArgs(cr.Name)})
}

func (d *discoverer) declaration(n *sitter.Node, s scope, tmpl *sitter.Node) {
	typ := n.ChildByFieldName("type")
	if typ != nil {
		switch typ.Type() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			d.classLike(typ, s, tmpl)
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if typ != nil && child.StartByte() == typ.StartByte() && child.EndByte() == typ.EndByte() {
			continue
		}
		if !isDeclarator(child.Type()) {
			continue
		}
		if fn := functionDeclarator(child); fn != nil {
			d.function(n, child, s, tmpl)
			continue
		}
		name := declaratorName(child)
		if name == nil {
			continue
		}
		kind := languages.KindVariable
		if s.className != "" {
			kind = languages.KindField
		}
		s.node.AddChild(&languages.CodeRange{
			Name:           name.Content(d.content),
			Kind:           kind,
			Range:          d.span(tmpl, n),
			SelectionRange: languages.NodeRange(name),
		})
	}
}

func (d *discoverer) function(n, declarator *sitter.Node, s scope, tmpl *sitter.Node) {
	name := declaratorName(declarator)
	if name == nil {
		return
	}
	cr := &languages.CodeRange{
		Name:           name.Content(d.content),
		Range:          d.span(tmpl, n),
		SelectionRange: languages.NodeRange(name),
	}
	if tmpl != nil {
		cr.Detail = "template"
	}
	cr.Kind = functionKind(cr.Name, s)
	s.node.AddChild(cr)
}

func (d *discoverer) span(tmpl, n *sitter.Node) languages.Range {
	if tmpl != nil {
		return languages.SpanRange(tmpl, n)
	}
	return languages.NodeRange(n)
}

func isDeclarator(nodeType string) bool {
	switch nodeType {
	case "identifier", "field_identifier", "qualified_identifier", "operator_name", "destructor_name",
		"pointer_declarator", "reference_declarator", "array_declarator", "function_declarator",
		"init_declarator", "parenthesized_declarator", "attributed_declarator":
		return true
	}
	return false
}

// functionDeclarator returns the function_declarator wrapped by n, looking
// through pointer and reference declarators. Function pointers are variables.
func functionDeclarator(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "function_declarator":
			if inner := n.ChildByFieldName("declarator"); inner != nil && inner.Type() == "parenthesized_declarator" {
				return nil
			}
			return n
		case "pointer_declarator", "attributed_declarator", "parenthesized_declarator":
			n = n.ChildByFieldName("declarator")
		case "reference_declarator":
			n = lastNamedChild(n)
		default:
			return nil
		}
	}
	return nil
}

// declaratorName finds the identifier node a declarator introduces.
func declaratorName(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "field_identifier", "qualified_identifier", "destructor_name",
		"operator_name", "type_identifier", "template_function", "operator_cast":
		return n
	case "function_declarator", "pointer_declarator", "array_declarator", "init_declarator":
		return declaratorName(n.ChildByFieldName("declarator"))
	case "reference_declarator", "parenthesized_declarator", "attributed_declarator":
		return declaratorName(lastNamedChild(n))
	}
	return nil
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}

func functionKind(name string, s scope) languages.Kind {
	last, qualifier := name, ""
	if i := strings.LastIndex(name, "::"); i >= 0 {
		last, qualifier = name[i+2:], name[:i]
	}
	last = strings.TrimSpace(last)

	switch {
	case strings.HasPrefix(last, "~"):
		return languages.KindDestructor
	case strings.HasPrefix(last, "operator") && (len(last) == len("operator") || !isIdentByte(last[len("operator")])):
		return languages.KindOperator
	case s.className != "" && last == s.className:
		return languages.KindConstructor
	case qualifier != "" && last == lastComponent(stripTemplateArgs(qualifier)):
		return languages.KindConstructor
	case s.className != "":
		return languages.KindMethod
	case qualifier != "":
		return languages.KindMethod
	}
	return languages.KindFunction
}

func stripTemplateArgs(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

func lastComponent(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
