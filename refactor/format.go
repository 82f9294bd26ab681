package refactor

import (
	"regexp"
	"strings"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/symbol"
	"github.com/roveo/cppgen/textutil"
)

// formatter turns generated code into the exact text inserted at a
// ProposedPosition of one file.
type formatter struct {
	doc    *document.Document
	unit   string
	braces config.BraceStyle
}

func (e *Engine) formatter(file *symbol.SourceFile) formatter {
	return formatter{
		doc:    file.Doc,
		unit:   file.IndentUnit(),
		braces: e.Config.Definitions.BraceStyle,
	}
}

// render returns the insertion text for code at pos. code uses "\n" line
// breaks and no indentation. last marks the final insertion at pos's anchor,
// which is responsible for pushing a same-line scope closer down.
func (f formatter) render(pos symbol.ProposedPosition, code string, last bool) string {
	block := code
	for i := len(pos.MissingNamespaces) - 1; i >= 0; i-- {
		ns := pos.MissingNamespaces[i]
		inner := block
		if pos.IndentNamespaces {
			inner = textutil.Reindent(block, f.unit)
		}
		block = "namespace " + ns + " {\n" + inner + "\n} // namespace " + ns
	}
	block = textutil.Reindent(block, pos.Indent)
	if pos.AccessLabel != "" {
		block = pos.ScopeIndent + pos.AccessLabel + ":\n" + block
	}

	var text string
	switch {
	case pos.Before:
		text = strings.TrimPrefix(block, pos.Indent) + "\n"
		if !pos.NextTo {
			text += "\n"
		}
		text += pos.Indent

	case pos.AtEnd:
		lead := ""
		if !pos.NextTo {
			doc := f.doc.Text()
			switch {
			case strings.TrimSpace(doc) == "":
			case strings.HasSuffix(doc, "\n\n"), strings.HasSuffix(doc, "\r\n\r\n"):
			case strings.HasSuffix(doc, "\n"):
				lead = "\n"
			default:
				lead = "\n\n"
			}
		}
		text = lead + block + "\n"

	default:
		lead := "\n"
		if !pos.NextTo && !pos.EmptyScope {
			lead = "\n\n"
		}
		text = lead + block
		if last && pos.CloserFollows {
			text += "\n" + pos.ScopeIndent
		}
	}
	return textutil.NormalizeEOL(text, f.doc.EOL())
}

// insert renders code at pos and records it in edit. The insertion that
// pushes a same-line closer down also swallows the blanks in front of it.
func (f formatter) insert(edit *document.WorkspaceEdit, pos symbol.ProposedPosition, code string, last bool) (*document.Insertion, string, error) {
	text := f.render(pos, code, last)
	gap := 0
	if last && pos.CloserFollows && !pos.Before && !pos.AtEnd {
		gap = pos.CloserGap
	}
	ins, err := edit.Replace(f.doc, pos.Position, gap, text)
	return ins, text, err
}

// skeleton returns a definition with an empty body whose only line is
// indented for the cursor.
func (f formatter) skeleton(head string, ctorOrDtor bool) string {
	brace := " {"
	if f.braces == config.NewLine || (f.braces == config.NewLineForCtorDtor && ctorOrDtor) {
		brace = "\n{"
	}
	return head + brace + "\n" + f.unit + "\n}"
}

// cursorInSkeleton returns the offset, relative to text, of the end of the
// line following the last '{' of a rendered skeleton.
func cursorInSkeleton(text string) int {
	open := strings.LastIndexByte(text, '{')
	if open < 0 {
		return 0
	}
	nl := strings.IndexByte(text[open:], '\n')
	if nl < 0 {
		return open + 1
	}
	lineStart := open + nl + 1
	if end := strings.IndexAny(text[lineStart:], "\r\n"); end >= 0 {
		return lineStart + end
	}
	return len(text)
}

// cursorAtCode returns the offset, relative to the rendered text, where
// code starts, skipping any access label in front of it.
func cursorAtCode(text, code string) int {
	first, _, _ := strings.Cut(code, "\n")
	if i := strings.Index(text, first); i >= 0 {
		return i
	}
	return len(text) - len(strings.TrimLeft(text, " \t\r\n"))
}

var (
	pureSuffix      = regexp.MustCompile(`=\s*0\s*$`)
	definitionDrops = []string{"override", "final"}
)

// definitionHead returns the out-of-line signature of decl: qualified with
// its class chain, template headers included, default arguments and
// declaration-only specifiers removed.
func definitionHead(decl *symbol.Symbol) string {
	var sb strings.Builder
	cls := decl.Parent
	if cls != nil && cls.IsClassType() {
		sb.WriteString(templatePrefix(cls))
	} else {
		cls = nil
	}
	if t := decl.TemplateDeclaration(); t != "" {
		sb.WriteString(t + "\n")
	}

	var prefix string
	if decl.IsConstexpr() {
		prefix = "constexpr "
	} else if textutil.HasWord(decl.Leading(), "inline") {
		prefix = "inline "
	}

	name := decl.Name()
	if q := decl.Qualifier(); q != "" {
		name = q + "::" + name
	}
	if cls != nil {
		name = classQualifier(cls) + name
	}

	params := make([]string, 0, len(decl.Params()))
	for _, p := range decl.Params() {
		params = append(params, strings.TrimSpace(textutil.TopLevelSplit(p, '=')[0]))
	}
	sig := name + "(" + strings.Join(params, ", ") + ")"

	trailing := decl.Trailing()
	if decl.IsPureVirtual() {
		trailing = pureSuffix.ReplaceAllString(trailing, "")
	}
	for _, w := range definitionDrops {
		trailing = textutil.RemoveWord(trailing, w)
	}
	if trailing = textutil.CollapseSpaces(trailing); trailing != "" {
		sig += " " + trailing
	}

	ret := decl.ReturnType()
	if cls != nil {
		ret = qualifyNestedTypes(ret, cls)
	}
	sb.WriteString(prefix + joinTypeName(ret, sig))
	return sb.String()
}

var identPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// qualifyNestedTypes prefixes names of types nested in cls, which are not in
// scope before the qualified function name.
func qualifyNestedTypes(ret string, cls *symbol.Symbol) string {
	nested := make(map[string]bool)
	for _, c := range cls.Children {
		if c.Name() != "" && (c.IsClassType() || c.Kind() == languages.KindEnum || c.Kind() == languages.KindTypeAlias) {
			nested[c.Name()] = true
		}
	}
	if len(nested) == 0 {
		return ret
	}
	qual := classQualifier(cls)
	var sb strings.Builder
	last := 0
	for _, m := range identPattern.FindAllStringIndex(ret, -1) {
		word := ret[m[0]:m[1]]
		if !nested[word] || (m[0] >= 2 && ret[m[0]-2:m[0]] == "::") {
			continue
		}
		sb.WriteString(ret[last:m[0]] + qual + word)
		last = m[1]
	}
	sb.WriteString(ret[last:])
	return sb.String()
}
