package symbol

import (
	"strings"
	"unicode"

	"github.com/roveo/cppgen/config"
)

var keywords = map[string]bool{
	"auto": true, "bool": true, "break": true, "case": true, "catch": true, "char": true,
	"class": true, "const": true, "continue": true, "default": true, "delete": true,
	"do": true, "double": true, "else": true, "enum": true, "explicit": true, "export": true,
	"extern": true, "false": true, "float": true, "for": true, "friend": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "mutable": true, "namespace": true,
	"new": true, "operator": true, "private": true, "protected": true, "public": true,
	"register": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "template": true, "this": true,
	"throw": true, "true": true, "try": true, "typedef": true, "typename": true,
	"union": true, "unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// BaseName strips member prefixes and suffixes from a member variable name:
// m_, s_, a leading underscore, a leading m before an upper-case letter and
// a trailing underscore.
func BaseName(name string) string {
	base := name
	switch {
	case strings.HasPrefix(base, "m_"), strings.HasPrefix(base, "s_"):
		base = base[2:]
	case strings.HasPrefix(base, "_"):
		base = strings.TrimLeft(base, "_")
	case len(base) > 1 && base[0] == 'm' && unicode.IsUpper(rune(base[1])):
		base = base[1:]
	}
	base = strings.TrimRight(base, "_")
	if base == "" {
		return name
	}
	return base
}

// words splits a snake_case or camelCase identifier into lower-case words.
func words(name string) []string {
	var out []string
	var cur []rune
	runes := []rune(name)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

func title(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func upperCamel(ws []string) string {
	var sb strings.Builder
	for _, w := range ws {
		sb.WriteString(title(w))
	}
	return sb.String()
}

func lowerCamel(ws []string) string {
	if len(ws) == 0 {
		return ""
	}
	return ws[0] + upperCamel(ws[1:])
}

// GetterName derives the getter name for a member called member.
func GetterName(member string, style config.NamingStyle) string {
	ws := words(BaseName(member))
	switch style {
	case config.Snake:
		return "get_" + strings.Join(ws, "_")
	case config.Bare:
		if bare := lowerCamel(ws); bare != member && !keywords[bare] {
			return bare
		}
	}
	return "get" + upperCamel(ws)
}

// SetterName derives the setter name for a member called member.
func SetterName(member string, style config.NamingStyle) string {
	ws := words(BaseName(member))
	if style == config.Snake {
		return "set_" + strings.Join(ws, "_")
	}
	return "set" + upperCamel(ws)
}

// ParameterName derives the setter parameter name for a member.
func ParameterName(member string, style config.NamingStyle) string {
	ws := words(BaseName(member))
	name := lowerCamel(ws)
	if style == config.Snake {
		name = strings.Join(ws, "_")
	}
	if keywords[name] || name == "" {
		return "value"
	}
	return name
}
