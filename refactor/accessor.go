package refactor

import (
	"fmt"
	"strings"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/symbol"
	"github.com/roveo/cppgen/textutil"
)

// AccessorType selects the accessors to generate.
type AccessorType int

const (
	Getter AccessorType = 1 << iota
	Setter
	Both = Getter | Setter
)

func (t AccessorType) String() string {
	switch t {
	case Getter:
		return "getter"
	case Setter:
		return "setter"
	case Both:
		return "getter+setter"
	}
	return fmt.Sprintf("AccessorType(%d)", int(t))
}

// ParseAccessorType parses "getter", "setter" or "both".
func ParseAccessorType(s string) (AccessorType, error) {
	switch strings.ToLower(s) {
	case "getter", "get":
		return Getter, nil
	case "setter", "set":
		return Setter, nil
	case "both", "accessors", "":
		return Both, nil
	}
	return 0, fmt.Errorf("unknown accessor type %q", s)
}

// Accessor is one generated getter or setter.
type Accessor struct {
	Type       AccessorType
	Name       string
	ReturnType string
	Parameter  string // setter parameter declaration, e.g. "const std::string &name"
	Static     bool
	Body       string
	Member     *symbol.Symbol
}

func newGetter(member *symbol.Symbol, style config.NamingStyle, enums map[string]bool) *Accessor {
	static := member.IsStatic()
	return &Accessor{
		Type:       Getter,
		Name:       member.GetterName(style),
		ReturnType: getterReturnType(member.MemberType(), enums),
		Static:     static,
		Body:       "return " + member.Name() + ";",
		Member:     member,
	}
}

func newSetter(member *symbol.Symbol, style config.NamingStyle, enums map[string]bool) *Accessor {
	param := symbol.ParameterName(member.Name(), style)
	target := member.Name()
	if param == member.Name() {
		if member.IsStatic() && member.Parent != nil {
			target = member.Parent.Name() + "::" + target
		} else {
			target = "this->" + target
		}
	}
	return &Accessor{
		Type:       Setter,
		Name:       member.SetterName(style),
		ReturnType: "void",
		Parameter:  joinTypeName(setterParamType(member.MemberType(), enums), param),
		Static:     member.IsStatic(),
		Body:       target + " = " + param + ";",
		Member:     member,
	}
}

// getterReturnType returns cheap types by value and everything else by
// const reference. Reference members are returned as declared.
func getterReturnType(typ string, enums map[string]bool) string {
	typ = strings.TrimSpace(typ)
	if strings.HasSuffix(typ, "&") {
		return typ
	}
	if symbol.IsByValueType(typ, enums) {
		if strings.Contains(typ, "*") {
			return typ
		}
		return textutil.RemoveWord(typ, "const")
	}
	return "const " + textutil.RemoveWord(typ, "const") + " &"
}

func setterParamType(typ string, enums map[string]bool) string {
	typ = strings.TrimSpace(typ)
	if symbol.IsByValueType(typ, enums) {
		if strings.Contains(typ, "*") {
			return typ
		}
		return textutil.RemoveWord(typ, "volatile")
	}
	return "const " + textutil.RemoveWord(typ, "const") + " &"
}

// joinTypeName glues a declarator to its type, keeping "T *name" and
// "T* name" in the style the type was written in.
func joinTypeName(typ, name string) string {
	if typ == "" {
		return name
	}
	if strings.HasSuffix(typ, "*") || strings.HasSuffix(typ, "&") {
		if len(typ) > 1 && typ[len(typ)-2] == ' ' {
			return typ + name
		}
	}
	return typ + " " + name
}

func (a *Accessor) signature(qualifier string) string {
	sig := qualifier + a.Name + "(" + a.Parameter + ")"
	if a.Type == Getter && !a.Static {
		sig += " const"
	}
	return joinTypeName(a.ReturnType, sig)
}

func (a *Accessor) prefix() string {
	if a.Static {
		return "static "
	}
	return ""
}

// Declaration returns the in-class declaration, e.g. "int getX() const;".
func (a *Accessor) Declaration() string {
	return a.prefix() + a.signature("") + ";"
}

// InlineDefinition returns the declaration fused with its body.
func (a *Accessor) InlineDefinition() string {
	return a.prefix() + a.signature("") + " { " + a.Body + " }"
}

// Definition returns the out-of-line definition for the class chain cls,
// e.g. "int A::getX() const { return m_x; }".
func (a *Accessor) Definition(cls *symbol.Symbol) string {
	return templatePrefix(cls) + a.signature(classQualifier(cls)) + " { " + a.Body + " }"
}

// classQualifier returns "Outer<T>::Inner::" for the class chain ending at cls.
func classQualifier(cls *symbol.Symbol) string {
	var sb strings.Builder
	for _, c := range cls.Classes() {
		sb.WriteString(c.Name() + c.TemplateArgs() + "::")
	}
	return sb.String()
}

// templatePrefix returns the template headers of the class chain ending at
// cls, one per line.
func templatePrefix(cls *symbol.Symbol) string {
	var sb strings.Builder
	for _, c := range cls.Classes() {
		if t := c.TemplateDeclaration(); t != "" {
			sb.WriteString(t + "\n")
		}
	}
	return sb.String()
}
