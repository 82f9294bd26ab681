package symbol

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/textutil"
)

var accessLabelPattern = regexp.MustCompile(`\b(public|protected|private)\s*:`)

// accessSection is a run of a class body under one access specifier.
// Offsets are document offsets; labelEnd is -1 for the implicit first section.
type accessSection struct {
	access     string
	labelEnd   int
	start, end int
}

// File returns the source file the symbol belongs to.
func (s *Symbol) File() *SourceFile { return s.file }

// FindGetterFor returns the class's getter for member: a function named
// after the member with no parameters and a non-void return, or nil.
func (s *Symbol) FindGetterFor(member *Symbol, style config.NamingStyle) *Symbol {
	name := member.GetterName(style)
	for _, c := range s.Children {
		if c.IsFunction() && c.Name() == name && c.hasParams && len(c.Params()) == 0 && c.ReturnType() != "void" {
			return c
		}
	}
	return nil
}

// FindSetterFor returns the class's setter for member: a function named
// after the member taking exactly one parameter of the member's type, or nil.
func (s *Symbol) FindSetterFor(member *Symbol, style config.NamingStyle) *Symbol {
	name := member.SetterName(style)
	want := baseType(member.MemberType())
	for _, c := range s.Children {
		if !c.IsFunction() || c.Name() != name || len(c.Params()) != 1 {
			continue
		}
		if baseType(normalizeParam(c.Params()[0])) == want {
			return c
		}
	}
	return nil
}

// baseType drops cv-qualifiers and references so that a setter taking
// "const T &" matches a member of type T.
func baseType(t string) string {
	t = textutil.RemoveWord(textutil.RemoveWord(t, "const"), "volatile")
	t = strings.TrimRight(strings.TrimSpace(t), "&")
	return spaceAroundPunct.ReplaceAllString(strings.TrimSpace(t), "$1")
}

func (s *Symbol) findMethod(name string) *Symbol {
	for _, c := range s.Children {
		if c.IsFunction() && c.Name() == name {
			return c
		}
	}
	return nil
}

// FindPositionForNewMethod returns where a new member function declaration
// goes in the class. With a relativeName that names an existing method the
// position is next to it: before it when before is set, after it otherwise.
// Without one the declaration is appended to the first public section; a
// class with no public section gets a position that carries a "public"
// access label.
func (s *Symbol) FindPositionForNewMethod(relativeName string, before bool) (ProposedPosition, error) {
	open, closeAt := s.BodyOffset(), s.ClosingOffset()
	if !s.IsClassType() || open < 0 || closeAt < 0 {
		return ProposedPosition{}, fmt.Errorf("%w: %s is not a class definition", ErrNoPosition, s.Name())
	}

	if relativeName != "" {
		if rel := s.findMethod(relativeName); rel != nil {
			if before {
				return ProposedPosition{
					Position: s.Doc.PositionAt(rel.start),
					Before:   true,
					NextTo:   true,
					Indent:   s.memberIndent(),
				}, nil
			}
			return s.positionAfter(rel.EndOffset()), nil
		}
	}

	sections := s.sections()
	var chosen *accessSection
	for i := range sections {
		sec := &sections[i]
		if sec.access != "public" {
			continue
		}
		if len(s.membersIn(*sec)) > 0 {
			chosen = sec
			break
		}
		if chosen == nil && (sec.labelEnd >= 0 || len(sections) == 1) {
			chosen = sec
		}
	}

	if chosen != nil {
		if members := s.membersIn(*chosen); len(members) > 0 {
			return s.positionAfter(members[len(members)-1].EndOffset()), nil
		}
		if chosen.labelEnd >= 0 {
			return s.positionAfter(chosen.labelEnd), nil
		}
		return s.emptyScopePosition(), nil
	}

	// no public section: append after everything with a label
	anchor := open + 1
	for _, c := range s.Children {
		anchor = max(anchor, c.EndOffset())
	}
	for _, sec := range sections {
		anchor = max(anchor, sec.labelEnd)
	}
	var pos ProposedPosition
	if anchor == open+1 {
		pos = s.emptyScopePosition()
	} else {
		pos = s.positionAfter(anchor)
	}
	pos.AccessLabel = "public"
	return pos, nil
}

func (s *Symbol) positionAfter(offset int) ProposedPosition {
	off, gap, closer := s.file.closerFollows(s.file.afterStatement(offset), s.ClosingOffset())
	return ProposedPosition{
		Position:      s.Doc.PositionAt(off),
		After:         true,
		NextTo:        true,
		CloserFollows: closer,
		CloserGap:     gap,
		Indent:        s.memberIndent(),
		ScopeIndent:   s.file.lineIndent(s.start),
	}
}

func (s *Symbol) emptyScopePosition() ProposedPosition {
	off, gap, closer := s.file.closerFollows(s.BodyOffset()+1, s.ClosingOffset())
	return ProposedPosition{
		Position:      s.Doc.PositionAt(off),
		After:         true,
		NextTo:        true,
		EmptyScope:    true,
		CloserFollows: closer,
		CloserGap:     gap,
		Indent:        s.memberIndent(),
		ScopeIndent:   s.file.lineIndent(s.start),
	}
}

// memberIndent is the indentation of the class's members: taken from the
// first member on a line of its own, else one unit deeper than the class.
func (s *Symbol) memberIndent() string {
	classLine := s.Code.Range.Start.Line
	for _, c := range s.Children {
		if c.Code.Range.Start.Line != classLine {
			return s.file.lineIndent(c.start)
		}
	}
	return s.file.lineIndent(s.start) + s.file.IndentUnit()
}

// sections splits the class body at its access specifiers.
func (s *Symbol) sections() []accessSection {
	open, closeAt := s.BodyOffset(), s.ClosingOffset()
	if open < 0 || closeAt <= open {
		return nil
	}
	access := "private"
	if s.Kind() != languages.KindClass {
		access = "public"
	}

	// angle brackets stay: "operator<" or "a < b" would unbalance them
	body := s.code[s.bodyStart+1 : closeAt-s.start]
	body = textutil.MaskBrackets(textutil.MaskBraces(textutil.MaskParentheses(body)))
	base := open + 1
	secs := []accessSection{{access: access, labelEnd: -1, start: base}}
	for _, m := range accessLabelPattern.FindAllStringSubmatchIndex(body, -1) {
		if m[1] < len(body) && body[m[1]] == ':' {
			continue
		}
		secs[len(secs)-1].end = base + m[0]
		secs = append(secs, accessSection{
			access:   body[m[2]:m[3]],
			labelEnd: base + m[1],
			start:    base + m[1],
		})
	}
	secs[len(secs)-1].end = closeAt
	return secs
}

func (s *Symbol) membersIn(sec accessSection) []*Symbol {
	var out []*Symbol
	for _, c := range s.Children {
		if c.start >= sec.start && c.start < sec.end {
			out = append(out, c)
		}
	}
	return out
}
