package refactor

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/symbol"
)

// GenerateAccessors adds a getter, a setter or both for the member variable
// named by req. Accessors that already exist are reported in the result and
// not generated again; a request with nothing left to generate returns an
// empty edit.
func (e *Engine) GenerateAccessors(ctx context.Context, req Request, typ AccessorType) (*Result, error) {
	file, err := e.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	member, err := resolve(file, req)
	if err != nil {
		return nil, err
	}
	if !member.IsMemberVariable() {
		return nil, preconditionf("%s is not a member variable", member.Name())
	}
	if member.IsArray() {
		return nil, preconditionf("cannot generate accessors for array member %s", member.Name())
	}
	cls := member.Parent
	style := e.Config.Accessors.Naming
	res := newResult()

	want := typ
	if want&Setter != 0 {
		reason := ""
		switch {
		case member.IsConst():
			reason = "is const"
		case member.IsReference():
			reason = "is a reference"
		}
		if reason != "" {
			if want == Setter {
				return nil, preconditionf("cannot generate a setter: %s %s", member.Name(), reason)
			}
			res.notice("setter skipped: %s %s", member.Name(), reason)
			want &^= Setter
		}
	}

	getter := cls.FindGetterFor(member, style)
	setter := cls.FindSetterFor(member, style)
	if want&Getter != 0 && getter != nil {
		res.notice("getter %s already exists", getter.Name())
		res.existing(getter)
		want &^= Getter
	}
	if want&Setter != 0 && setter != nil {
		res.notice("setter %s already exists", setter.Name())
		res.existing(setter)
		want &^= Setter
	}
	if want == 0 {
		return res, nil
	}

	var accessors []*Accessor
	if want&Getter != 0 {
		accessors = append(accessors, newGetter(member, style, file.Enums()))
	}
	if want&Setter != 0 {
		accessors = append(accessors, newSetter(member, style, file.Enums()))
	}

	positions, err := declarationPositions(cls, want, getter, setter)
	if err != nil {
		return nil, notFoundf("no position for accessors in %s: %v", cls.Name(), err)
	}

	format := e.formatter(file)
	var first *document.Insertion
	var firstText, firstCode string
	for i, a := range accessors {
		code := a.Declaration()
		if e.accessorLocation(a) == config.Inline {
			code = a.InlineDefinition()
		}
		ins, text, err := format.insert(res.Edit, positions[i], code, i == len(accessors)-1)
		if err != nil {
			return nil, internal("accessor declaration", err)
		}
		if first == nil {
			first, firstText, firstCode = ins, text, code
		}
	}

	if err := e.addAccessorDefinitions(ctx, res, file, member, accessors, positions); err != nil {
		return nil, err
	}

	res.Cursor = cursorLocation(res.Edit, first, cursorAtCode(firstText, firstCode))
	log.Debug().Str("member", member.QualifiedName()).Stringer("type", want).Int("insertions", res.Edit.Len()).Msg("accessors generated")
	return res, nil
}

func (e *Engine) accessorLocation(a *Accessor) config.DefinitionLocation {
	if a.Type == Getter {
		return e.Config.Accessors.GetterLocation
	}
	return e.Config.Accessors.SetterLocation
}

// declarationPositions places a lone getter before an existing setter and a
// lone setter after an existing getter. A pair shares one anchor with the
// setter right after the getter.
func declarationPositions(cls *symbol.Symbol, want AccessorType, getter, setter *symbol.Symbol) ([]symbol.ProposedPosition, error) {
	switch want {
	case Getter:
		rel := ""
		if setter != nil {
			rel = setter.Name()
		}
		pos, err := cls.FindPositionForNewMethod(rel, true)
		return []symbol.ProposedPosition{pos}, err
	case Setter:
		rel := ""
		if getter != nil {
			rel = getter.Name()
		}
		pos, err := cls.FindPositionForNewMethod(rel, false)
		return []symbol.ProposedPosition{pos}, err
	}
	pos, err := cls.FindPositionForNewMethod("", false)
	if err != nil {
		return nil, err
	}
	first, second := pos.Pair()
	return []symbol.ProposedPosition{first, second}, nil
}

type pendingDefinition struct {
	target TargetResolution
	code   string
}

// addAccessorDefinitions inserts the out-of-line definitions of accessors
// whose location is not inline.
func (e *Engine) addAccessorDefinitions(ctx context.Context, res *Result, file *symbol.SourceFile, member *symbol.Symbol, accessors []*Accessor, positions []symbol.ProposedPosition) error {
	cls := member.Parent
	var paired *symbol.SourceFile
	var pairLoaded bool

	var defs []pendingDefinition
	for i, a := range accessors {
		loc := e.accessorLocation(a)
		if loc == config.Inline {
			continue
		}
		tc := TargetContext{
			Declaring:    file,
			Anchor:       symbol.AnchorAt(cls, positions[i].Position),
			Subject:      member,
			StayInHeader: cls.InTemplate(),
		}
		if loc == config.SourceFile && !tc.StayInHeader {
			if !pairLoaded {
				var err error
				if paired, err = e.openSourcePair(ctx, file); err != nil {
					return err
				}
				pairLoaded = true
			}
			tc.Paired = paired
		}
		target, err := ResolveTarget(loc, tc)
		if err != nil {
			return err
		}
		if loc == config.SourceFile && target.Location != config.SourceFile && e.isHeader(file) {
			res.notice("%s placed below the class: %s", a.Name, fallbackReason(tc))
		}
		defs = append(defs, pendingDefinition{target: target, code: a.Definition(cls)})
	}

	// two definitions at one anchor: the second follows the first directly,
	// inside the same namespace wrapper when one is needed
	if len(defs) == 2 && sameTarget(defs[0].target, defs[1].target) {
		pos := defs[0].target.Position
		format := e.formatter(defs[0].target.File)
		if len(pos.MissingNamespaces) > 0 {
			_, _, err := format.insert(res.Edit, pos, defs[0].code+"\n"+defs[1].code, true)
			return wrapInsert(err)
		}
		first, second := pos.Pair()
		if _, _, err := format.insert(res.Edit, first, defs[0].code, false); err != nil {
			return wrapInsert(err)
		}
		_, _, err := format.insert(res.Edit, second, defs[1].code, true)
		return wrapInsert(err)
	}

	for _, d := range defs {
		format := e.formatter(d.target.File)
		if _, _, err := format.insert(res.Edit, d.target.Position, d.code, true); err != nil {
			return wrapInsert(err)
		}
	}
	return nil
}

func sameTarget(a, b TargetResolution) bool {
	return a.File == b.File && a.Position.Position == b.Position.Position && a.Position.Before == b.Position.Before
}

func wrapInsert(err error) error {
	if err != nil {
		return internal("definition insertion", err)
	}
	return nil
}
