package refactor

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/symbol"
)

// AddDefinition creates an empty out-of-line definition for the function
// declaration named by req. An empty location uses the configured default.
// When a definition already exists the result reports it and carries no
// edit.
func (e *Engine) AddDefinition(ctx context.Context, req Request, location config.DefinitionLocation) (*Result, error) {
	if location == "" {
		location = e.Config.Definitions.Location
	}
	if location == config.Inline {
		return nil, preconditionf("definitions are added out of line: use %q or %q", config.BelowClass, config.SourceFile)
	}

	file, err := e.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	decl, err := resolve(file, req)
	if err != nil {
		return nil, err
	}
	if err := checkDeclaration(decl); err != nil {
		return nil, err
	}

	res := newResult()
	if decl.IsFunctionDefinition() {
		res.notice("%s is already defined", decl.Name())
		res.existing(decl)
		return res, nil
	}

	paired, err := e.openSourcePair(ctx, file)
	if err != nil {
		return nil, err
	}
	if def := findDefinition(decl, file, paired); def != nil {
		res.notice("definition of %s already exists in %s", decl.QualifiedName(), def.Doc.Path)
		res.existing(def)
		return res, nil
	}

	tc := TargetContext{
		Declaring:    file,
		Paired:       paired,
		Anchor:       symbol.AnchorFor(decl),
		Subject:      decl,
		StayInHeader: decl.IsInline() || decl.IsConstexpr() || decl.InTemplate(),
	}
	target, err := ResolveTarget(location, tc)
	if err != nil {
		return nil, err
	}
	if location == config.SourceFile && target.Location != config.SourceFile && e.isHeader(file) {
		res.notice("definition of %s placed in the header: %s", decl.Name(), fallbackReason(tc))
	}

	format := e.formatter(target.File)
	code := format.skeleton(definitionHead(decl), decl.IsConstructor() || decl.IsDestructor())
	ins, text, err := format.insert(res.Edit, target.Position, code, true)
	if err != nil {
		return nil, internal("definition insertion", err)
	}
	res.Cursor = cursorLocation(res.Edit, ins, cursorInSkeleton(text))

	log.Debug().
		Str("function", decl.QualifiedName()).
		Str("file", target.File.Path()).
		Stringer("position", target.Position).
		Msg("definition added")
	return res, nil
}

// checkDeclaration rejects functions that cannot get an out-of-line body.
func checkDeclaration(decl *symbol.Symbol) error {
	switch {
	case !decl.IsFunction():
		return preconditionf("%s is not a function", decl.Name())
	case decl.IsDefaultedOrDeleted():
		return preconditionf("%s is defaulted or deleted", decl.Name())
	case decl.IsFriend():
		return preconditionf("%s is a friend declaration", decl.Name())
	}
	return nil
}
