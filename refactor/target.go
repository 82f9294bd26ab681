package refactor

import (
	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/symbol"
)

// TargetContext is what definition placement depends on.
type TargetContext struct {
	Declaring *symbol.SourceFile
	// Paired is the implementation file, nil when there is none or the
	// declaring file is not a header.
	Paired *symbol.SourceFile
	Anchor symbol.DefinitionAnchor
	// Subject is the declaration (or, for accessors, the member) whose
	// enclosing class decides the below-class position.
	Subject *symbol.Symbol
	// StayInHeader is set for inline, constexpr and template code.
	StayInHeader bool
}

// TargetResolution is a definition position and the file it applies to.
// Location is the placement actually used, which differs from the requested
// one after a fallback.
type TargetResolution struct {
	Location config.DefinitionLocation
	File     *symbol.SourceFile
	Position symbol.ProposedPosition
}

// ResolveTarget chooses where a definition goes. Inline fuses it with the
// declaration; BelowClass puts it after the enclosing class in the
// declaring file; SourceFile puts it in the paired file, falling back to
// BelowClass when there is no pair or the code must stay in the header.
func ResolveTarget(location config.DefinitionLocation, tc TargetContext) (TargetResolution, error) {
	switch location {
	case config.Inline:
		return TargetResolution{Location: config.Inline, File: tc.Declaring}, nil

	case config.SourceFile:
		if tc.Paired != nil && !tc.StayInHeader {
			pos, err := tc.Paired.FindPositionForDefinition(tc.Anchor, nil)
			if err != nil {
				return TargetResolution{}, notFoundf("no position for the definition in %s: %v", tc.Paired.Path(), err)
			}
			return TargetResolution{Location: config.SourceFile, File: tc.Paired, Position: pos}, nil
		}
		fallthrough

	case config.BelowClass:
		below := tc.Declaring.PositionBelow(tc.Subject)
		pos, err := tc.Declaring.FindPositionForDefinition(tc.Anchor, &below)
		if err != nil {
			return TargetResolution{}, notFoundf("no position for the definition in %s: %v", tc.Declaring.Path(), err)
		}
		return TargetResolution{Location: config.BelowClass, File: tc.Declaring, Position: pos}, nil
	}
	return TargetResolution{}, preconditionf("unknown definition location %q", location)
}

// fallbackReason explains why a SourceFile request landed in the header.
func fallbackReason(tc TargetContext) string {
	if tc.StayInHeader {
		return "inline, constexpr and template definitions stay in the header"
	}
	return "no matching source file for " + tc.Declaring.Path()
}
