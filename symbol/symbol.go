// Package symbol classifies discovered C++ code ranges and computes where new
// declarations and definitions belong.
//
// A Symbol pairs a languages.CodeRange with the document snapshot it was
// discovered in. Everything a Symbol reports is derived once, at
// construction, from masked text of that snapshot. Snapshots are immutable,
// so a Symbol never goes stale; Symbols of different snapshots are simply not
// comparable.
package symbol

import (
	"regexp"
	"strings"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/textutil"
)

// Symbol is a classified node of a source file's symbol tree.
type Symbol struct {
	Code     *languages.CodeRange
	Doc      *document.Document
	Parent   *Symbol
	Children []*Symbol

	file  *SourceFile
	start int    // document offset of the range start
	text  string // source text of the range
	code  string // text with comments and literals blanked

	nameStart, nameEnd int // selection, relative to text
	name               string
	qualifier          string

	templateHeader string
	leading        string // between the template header and the name
	params         []string
	hasParams      bool
	trailing       string // after the parameter list, without initializers or body
	tail           string // after the name, for variables
	bodyStart      int    // '{' of the body relative to text, -1 without one

	flags flags
}

type flags struct {
	static, inline, constexpr, friend                 bool
	constQualified, pure, defaulted, deleted          bool
	constMember, reference, array, bitField, template bool
}

var attributePattern = regexp.MustCompile(`\[\[[^\]]*\]\]|__attribute__\s*\(\([^)]*\)\)|alignas\s*\([^)]*\)`)

func newSymbol(doc *document.Document, cr *languages.CodeRange, parent *Symbol) (*Symbol, error) {
	s := &Symbol{Code: cr, Doc: doc, Parent: parent, bodyStart: -1}

	if cr.Kind == languages.KindFile {
		s.text = doc.Text()
		s.code = textutil.MaskNonCode(s.text)
		return s, nil
	}

	start, err := doc.OffsetAt(cr.Range.Start)
	if err != nil {
		return nil, err
	}
	end, err := doc.OffsetAt(cr.Range.End)
	if err != nil {
		return nil, err
	}
	selStart, err := doc.OffsetAt(cr.SelectionRange.Start)
	if err != nil {
		return nil, err
	}
	selEnd, err := doc.OffsetAt(cr.SelectionRange.End)
	if err != nil {
		return nil, err
	}
	if end < start {
		end = start
	}
	if cr.Name == "" || selStart < start || selEnd > end || selEnd < selStart {
		selStart, selEnd = start, start
	}

	s.start = start
	s.text = doc.Text()[start:end]
	s.code = textutil.MaskNonCode(s.text)
	s.nameStart, s.nameEnd = selStart-start, selEnd-start
	s.derive()
	return s, nil
}

func (s *Symbol) derive() {
	full := strings.ReplaceAll(textutil.CollapseSpaces(s.code[s.nameStart:s.nameEnd]), " :: ", "::")
	s.qualifier, s.name = splitQualifier(full)
	if s.name == "" {
		s.name = s.Code.Name
	}

	s.templateHeader, s.leading = splitTemplateHeader(s.code[:s.nameStart])
	s.flags.template = s.templateHeader != "" || s.Code.Detail == "template"
	lead := " " + attributePattern.ReplaceAllString(s.leading, " ") + " "
	s.flags.static = textutil.HasWord(lead, "static")
	s.flags.inline = textutil.HasWord(lead, "inline")
	s.flags.constexpr = textutil.HasWord(lead, "constexpr") || textutil.HasWord(lead, "consteval")
	s.flags.friend = textutil.HasWord(lead, "friend")

	switch {
	case s.Code.Kind.IsFunctionLike():
		s.deriveFunction()
	case s.Code.Kind.IsClassLike() || s.Code.Kind == languages.KindNamespace || s.Code.Kind == languages.KindEnum:
		if i := strings.IndexByte(s.code[s.nameEnd:], '{'); i >= 0 {
			s.bodyStart = s.nameEnd + i
		}
	case s.Code.Kind == languages.KindField || s.Code.Kind == languages.KindVariable:
		s.deriveVariable()
	}
}

func (s *Symbol) deriveFunction() {
	rest := s.code[s.nameEnd:]
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return
	}
	masked := textutil.MaskParentheses(rest)
	closeRel := strings.IndexByte(masked[open:], ')')
	if closeRel < 0 {
		return
	}
	closeAt := open + closeRel
	s.hasParams = true
	s.params = splitParams(rest[open+1 : closeAt])

	afterStart := s.nameEnd + closeAt + 1
	sigEnd := len(strings.TrimRight(s.code, " \t\r\n"))
	if sigEnd > afterStart && s.code[sigEnd-1] == '}' {
		braces := textutil.MaskBraces(s.code[:sigEnd])
		if open := strings.LastIndexByte(braces[:sigEnd-1], '{'); open >= afterStart {
			s.bodyStart = open
			sigEnd = open
		}
	}
	if sigEnd < afterStart {
		sigEnd = afterStart
	}

	tail := strings.TrimSuffix(strings.TrimSpace(s.code[afterStart:sigEnd]), ";")
	if i := initializerColon(tail); i >= 0 {
		tail = tail[:i]
	}
	s.trailing = textutil.CollapseSpaces(tail)

	compact := strings.ReplaceAll(s.trailing, " ", "")
	s.flags.pure = strings.HasSuffix(compact, "=0")
	s.flags.defaulted = strings.HasSuffix(compact, "=default")
	s.flags.deleted = strings.HasSuffix(compact, "=delete")

	quals := s.trailing
	if i := strings.Index(quals, "->"); i >= 0 {
		quals = quals[:i]
	}
	s.flags.constQualified = textutil.HasWord(quals, "const")
}

func (s *Symbol) deriveVariable() {
	s.tail = strings.TrimSpace(s.code[s.nameEnd:])
	s.flags.array = strings.HasPrefix(s.tail, "[")
	s.flags.bitField = strings.HasPrefix(s.tail, ":") && !strings.HasPrefix(s.tail, "::")

	typ := declaredType(s.leading)
	angles := textutil.MaskAngleBrackets(typ)
	afterPtr := angles
	if i := strings.LastIndexAny(angles, "*"); i >= 0 {
		afterPtr = angles[i:]
	}
	s.flags.reference = strings.HasSuffix(strings.TrimSpace(angles), "&")
	s.flags.constMember = textutil.HasWord(afterPtr, "const") || s.flags.constexpr
}

// splitQualifier splits "A<T>::B::name" into "A<T>::B" and "name".
func splitQualifier(full string) (qualifier, name string) {
	masked := textutil.MaskAngleBrackets(full)
	if i := strings.LastIndex(masked, "::"); i >= 0 {
		return full[:i], full[i+2:]
	}
	return "", full
}

// splitTemplateHeader separates leading "template <...>" headers from the
// rest of a declaration's leading text.
func splitTemplateHeader(leading string) (header, rest string) {
	rest = leading
	for {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if !strings.HasPrefix(trimmed, "template") {
			return strings.TrimSpace(header), rest
		}
		after := trimmed[len("template"):]
		open := strings.IndexByte(after, '<')
		if open < 0 || strings.TrimSpace(after[:open]) != "" {
			return strings.TrimSpace(header), rest
		}
		masked := textutil.MaskAngleBrackets(textutil.MaskParentheses(after))
		closeAt := strings.IndexByte(masked[open:], '>')
		if closeAt < 0 {
			return strings.TrimSpace(header), rest
		}
		end := open + closeAt + 1
		header += " template " + textutil.CollapseSpaces(after[:end])
		rest = after[end:]
	}
}

// initializerColon finds the ':' starting a constructor initializer list.
func initializerColon(tail string) int {
	masked := textutil.MaskDelimiters(tail)
	for i := 0; i < len(masked); i++ {
		if masked[i] != ':' {
			continue
		}
		if i+1 < len(masked) && masked[i+1] == ':' {
			i++
			continue
		}
		return i
	}
	return -1
}

var storageWords = []string{"static", "mutable", "inline", "constexpr", "constinit", "thread_local", "extern", "register"}

// declaredType returns the type part of a variable's leading text: storage
// specifiers and attributes are dropped, and for "int a, *b" style
// declarations the base type is combined with the declarator's own pointer
// and reference operators.
func declaredType(leading string) string {
	lead := attributePattern.ReplaceAllString(leading, " ")
	parts := textutil.TopLevelSplit(lead, ',')
	typ := parts[0]
	if len(parts) > 1 {
		base := parts[0]
		if i := strings.IndexAny(textutil.MaskDelimiters(base), "={"); i >= 0 {
			base = base[:i]
		}
		base = strings.TrimRight(base, " \t\r\n")
		if _, off, ok := textutil.LastIdentifier(base); ok {
			base = base[:off]
		}
		base = strings.TrimRight(base, " *&\t\r\n")
		typ = base + " " + strings.TrimSpace(parts[len(parts)-1])
	}
	for _, w := range storageWords {
		typ = textutil.RemoveWord(typ, w)
	}
	return textutil.CollapseSpaces(typ)
}

func splitParams(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var out []string
	for _, p := range textutil.TopLevelSplit(list, ',') {
		out = append(out, textutil.CollapseSpaces(p))
	}
	if len(out) == 1 && out[0] == "void" {
		return nil
	}
	return out
}

// Name returns the unqualified name.
func (s *Symbol) Name() string { return s.name }

// Qualifier returns the explicit scope written before the name ("A<T>" for
// "A<T>::get"), or "".
func (s *Symbol) Qualifier() string { return s.qualifier }

// Kind returns the discovered kind.
func (s *Symbol) Kind() languages.Kind { return s.Code.Kind }

// Range returns the full range of the symbol.
func (s *Symbol) Range() languages.Range { return s.Code.Range }

// Text returns the source text of the symbol.
func (s *Symbol) Text() string { return s.text }

// Leading returns the text between any template header and the name, with
// comments and literals blanked.
func (s *Symbol) Leading() string { return s.leading }

// Trailing returns the qualifiers after a function's parameter list.
func (s *Symbol) Trailing() string { return s.trailing }

// Params returns the parameter declarations of a function.
func (s *Symbol) Params() []string { return s.params }

// TemplateHeader returns the symbol's own "template <...>" header, or "".
func (s *Symbol) TemplateHeader() string { return s.templateHeader }

// StartOffset returns the document offset of the range start.
func (s *Symbol) StartOffset() int { return s.start }

// EndOffset returns the document offset of the range end.
func (s *Symbol) EndOffset() int { return s.start + len(s.text) }

// BodyOffset returns the document offset of the body's opening brace, or -1.
func (s *Symbol) BodyOffset() int {
	if s.bodyStart < 0 {
		return -1
	}
	return s.start + s.bodyStart
}

// ClosingOffset returns the document offset of the body's closing brace, or -1.
func (s *Symbol) ClosingOffset() int {
	if s.bodyStart < 0 {
		return -1
	}
	i := strings.LastIndexByte(s.code, '}')
	if i < s.bodyStart {
		return -1
	}
	return s.start + i
}

// IsFunction reports whether the symbol is callable.
func (s *Symbol) IsFunction() bool { return s.Code.Kind.IsFunctionLike() }

// IsFunctionDefinition reports whether the symbol is a function with a body,
// or one defined as defaulted or deleted.
func (s *Symbol) IsFunctionDefinition() bool {
	return s.IsFunction() && (s.bodyStart >= 0 || s.flags.defaulted || s.flags.deleted)
}

// IsFunctionDeclaration reports whether the symbol is a function without a body.
func (s *Symbol) IsFunctionDeclaration() bool {
	return s.IsFunction() && !s.IsFunctionDefinition()
}

// IsVariable reports whether the symbol is a variable or data member.
func (s *Symbol) IsVariable() bool {
	return s.Code.Kind == languages.KindField || s.Code.Kind == languages.KindVariable
}

// IsMemberVariable reports whether the symbol is a data member of a class.
func (s *Symbol) IsMemberVariable() bool {
	return s.IsVariable() && s.Parent != nil && s.Parent.IsClassType()
}

// IsClassType reports whether the symbol is a class, struct or union.
func (s *Symbol) IsClassType() bool { return s.Code.Kind.IsClassLike() }

// IsNamespace reports whether the symbol is a namespace.
func (s *Symbol) IsNamespace() bool { return s.Code.Kind == languages.KindNamespace }

func (s *Symbol) IsConstructor() bool { return s.Code.Kind == languages.KindConstructor }
func (s *Symbol) IsDestructor() bool  { return s.Code.Kind == languages.KindDestructor }

// IsConst reports a const-qualified member function, or a variable that
// cannot be assigned (const or constexpr).
func (s *Symbol) IsConst() bool {
	if s.IsFunction() {
		return s.flags.constQualified
	}
	return s.flags.constMember
}

func (s *Symbol) IsConstexpr() bool { return s.flags.constexpr }
func (s *Symbol) IsStatic() bool    { return s.flags.static }
func (s *Symbol) IsFriend() bool    { return s.flags.friend }

// IsInline reports an explicitly inline symbol or a member function defined
// inside its class.
func (s *Symbol) IsInline() bool {
	if s.flags.inline {
		return true
	}
	return s.IsFunction() && s.bodyStart >= 0 && s.Parent != nil && s.Parent.IsClassType()
}

// IsPureVirtual reports a "= 0" declaration. A pure virtual function may
// still have an out-of-line body.
func (s *Symbol) IsPureVirtual() bool { return s.flags.pure }

func (s *Symbol) IsDefaultedOrDeleted() bool { return s.flags.defaulted || s.flags.deleted }

// IsReference reports a reference data member.
func (s *Symbol) IsReference() bool { return s.flags.reference }

// IsArray reports an array data member.
func (s *Symbol) IsArray() bool { return s.flags.array }

// IsBitField reports a bit-field data member.
func (s *Symbol) IsBitField() bool { return s.flags.bitField }

// IsTemplate reports whether the symbol itself carries a template header.
func (s *Symbol) IsTemplate() bool { return s.flags.template }

// InTemplate reports whether the symbol or any enclosing class is a template.
func (s *Symbol) InTemplate() bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.IsTemplate() {
			return true
		}
	}
	return false
}

// MemberType returns the declared type of a variable without storage
// specifiers, e.g. "const std::string" for "static const std::string s_name;".
func (s *Symbol) MemberType() string {
	if !s.IsVariable() {
		return ""
	}
	return declaredType(s.leading)
}

// ReturnType returns the return type written before a function's name, with
// specifiers such as virtual, static and inline removed.
func (s *Symbol) ReturnType() string {
	if !s.IsFunction() {
		return ""
	}
	lead := attributePattern.ReplaceAllString(s.leading, " ")
	for _, w := range []string{"virtual", "static", "inline", "explicit", "friend", "constexpr", "consteval"} {
		lead = textutil.RemoveWord(lead, w)
	}
	return textutil.CollapseSpaces(lead)
}

// BaseName returns the member name without prefixes and suffixes.
func (s *Symbol) BaseName() string { return BaseName(s.name) }

// GetterName derives the getter name for a member variable.
func (s *Symbol) GetterName(style config.NamingStyle) string { return GetterName(s.name, style) }

// SetterName derives the setter name for a member variable.
func (s *Symbol) SetterName(style config.NamingStyle) string { return SetterName(s.name, style) }

// Scopes returns the enclosing namespace and class symbols, outermost first.
func (s *Symbol) Scopes() []*Symbol {
	var out []*Symbol
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		if cur.IsNamespace() || cur.IsClassType() {
			out = append([]*Symbol{cur}, out...)
		}
	}
	return out
}

// Namespaces returns the names of enclosing namespaces, outermost first.
// Nested namespace definitions ("a::b") contribute each component.
func (s *Symbol) Namespaces() []string {
	var out []string
	scopes := s.Scopes()
	if s.IsNamespace() {
		scopes = append(scopes, s)
	}
	for _, sc := range scopes {
		if sc.IsNamespace() && sc.Name() != "" {
			out = append(out, strings.Split(sc.Name(), "::")...)
		}
	}
	return out
}

// Classes returns the enclosing classes of s, outermost first. For a class
// symbol the class itself is included last.
func (s *Symbol) Classes() []*Symbol {
	var out []*Symbol
	for _, sc := range s.Scopes() {
		if sc.IsClassType() {
			out = append(out, sc)
		}
	}
	if s.IsClassType() {
		out = append(out, s)
	}
	return out
}

// QualifiedName returns the fully qualified name with template arguments
// removed, e.g. "ns::A::get".
func (s *Symbol) QualifiedName() string {
	var parts []string
	for _, sc := range s.Scopes() {
		if sc.Name() != "" {
			parts = append(parts, stripTemplateArgs(sc.Name()))
		}
	}
	if s.qualifier != "" {
		parts = append(parts, stripTemplateArgs(s.qualifier))
	}
	parts = append(parts, s.name)
	return strings.Join(parts, "::")
}

// NormalizedSignature returns the parameter types and const qualification
// of a function, e.g. "(int,const std::string&) const".
func (s *Symbol) NormalizedSignature() string {
	types := make([]string, 0, len(s.params))
	for _, p := range s.params {
		types = append(types, normalizeParam(p))
	}
	sig := "(" + strings.Join(types, ",") + ")"
	if s.flags.constQualified {
		sig += " const"
	}
	return sig
}

// TemplateArgs returns the argument list matching a class's template header,
// e.g. "<T, N>" for "template <typename T, int N = 3>".
func (s *Symbol) TemplateArgs() string {
	params := templateParams(s.templateHeader)
	if len(params) == 0 {
		return ""
	}
	args := make([]string, 0, len(params))
	for _, p := range params {
		name := templateParamName(p)
		if strings.Contains(p, "...") {
			name += "..."
		}
		args = append(args, name)
	}
	return "<" + strings.Join(args, ", ") + ">"
}

// TemplateDeclaration returns the class's template header without default
// arguments, as required in front of an out-of-line member definition.
func (s *Symbol) TemplateDeclaration() string {
	params := templateParams(s.templateHeader)
	if s.templateHeader == "" {
		return ""
	}
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, stripDefault(p))
	}
	return "template <" + strings.Join(out, ", ") + ">"
}

// Contains reports whether pos lies inside the symbol's range.
func (s *Symbol) Contains(pos languages.Position) bool {
	return s.Code.Range.Contains(pos)
}

// templateParams splits the innermost template header's parameter list.
func templateParams(header string) []string {
	i := strings.LastIndex(header, "template")
	if i < 0 {
		return nil
	}
	h := header[i+len("template"):]
	open := strings.IndexByte(h, '<')
	closeAt := strings.LastIndexByte(h, '>')
	if open < 0 || closeAt <= open {
		return nil
	}
	return splitParams(h[open+1 : closeAt])
}

func templateParamName(p string) string {
	p = stripDefault(p)
	if name, _, ok := textutil.LastIdentifier(p); ok {
		return name
	}
	return p
}

func stripDefault(p string) string {
	parts := textutil.TopLevelSplit(p, '=')
	return strings.TrimSpace(parts[0])
}

func stripTemplateArgs(name string) string {
	masked := textutil.MaskAngleBrackets(name)
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(masked); i++ {
		switch {
		case masked[i] == '<':
			depth++
		case masked[i] == '>' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteByte(name[i])
		}
	}
	return sb.String()
}

var (
	cvWords          = map[string]bool{"const": true, "volatile": true, "struct": true, "class": true, "enum": true, "union": true, "typename": true}
	fundamentalWords = map[string]bool{
		"bool": true, "char": true, "char8_t": true, "char16_t": true, "char32_t": true, "wchar_t": true,
		"short": true, "int": true, "long": true, "signed": true, "unsigned": true,
		"float": true, "double": true, "void": true, "auto": true,
	}
	spaceAroundPunct = regexp.MustCompile(`\s*([*&<>,():\[\]])\s*`)
)

// normalizeParam reduces a parameter declaration to its type: default
// argument and parameter name removed, whitespace canonicalized.
func normalizeParam(p string) string {
	p = textutil.CollapseSpaces(stripDefault(p))
	if i := strings.IndexByte(textutil.MaskDelimiters(p), '['); i >= 0 {
		p = strings.TrimSpace(p[:i]) + "[]"
	} else if ident, off, ok := textutil.LastIdentifier(p); ok && !fundamentalWords[ident] {
		rest := strings.TrimSpace(p[:off])
		if rest != "" && !strings.HasSuffix(rest, "::") && hasType(rest) {
			p = rest
		}
	}
	return spaceAroundPunct.ReplaceAllString(strings.TrimSpace(p), "$1")
}

// hasType reports whether s names a type on its own, so that an identifier
// following it is a parameter name.
func hasType(s string) bool {
	if strings.ContainsAny(s, "*&>") {
		return true
	}
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ':' }) {
		if !cvWords[w] {
			return true
		}
	}
	return false
}

// IsByValueType reports whether a type is cheap to pass by value: a
// fundamental type, a pointer, or one of the given enum names.
func IsByValueType(typ string, enums map[string]bool) bool {
	t := strings.TrimSpace(typ)
	if strings.HasSuffix(t, "*") || strings.Contains(t, "*const") || strings.Contains(t, "* const") {
		return true
	}
	t = textutil.RemoveWord(textutil.RemoveWord(t, "const"), "volatile")
	if strings.HasPrefix(t, "std::") {
		switch strings.TrimPrefix(t, "std::") {
		case "size_t", "ptrdiff_t", "int8_t", "int16_t", "int32_t", "int64_t",
			"uint8_t", "uint16_t", "uint32_t", "uint64_t", "intptr_t", "uintptr_t", "nullptr_t", "byte":
			return true
		}
	}
	allFundamental := t != ""
	for _, w := range strings.Fields(t) {
		if !fundamentalWords[w] {
			allFundamental = false
		}
	}
	if allFundamental {
		return true
	}
	switch t {
	case "size_t", "ptrdiff_t", "int8_t", "int16_t", "int32_t", "int64_t",
		"uint8_t", "uint16_t", "uint32_t", "uint64_t", "intptr_t", "uintptr_t", "qint64", "quint64", "qreal":
		return true
	}
	return enums[t] || enums[stripTemplateArgs(t)]
}
