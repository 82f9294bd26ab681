package refactor

import (
	"context"

	"github.com/roveo/cppgen/pairing"
)

// FindDefinition locates the definition of the function declaration named
// by req, in its own file or the paired one. A definition resolves to itself.
func (e *Engine) FindDefinition(ctx context.Context, req Request) (*Result, error) {
	file, err := e.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	decl, err := resolve(file, req)
	if err != nil {
		return nil, err
	}
	if !decl.IsFunction() {
		return nil, preconditionf("%s is not a function", decl.Name())
	}

	res := newResult()
	if decl.IsFunctionDefinition() {
		res.existing(decl)
		return res, nil
	}
	paired, err := e.openPair(ctx, file)
	if err != nil {
		return nil, err
	}
	def := findDefinition(decl, file, paired)
	if def == nil {
		return nil, notFoundf("no definition of %s found", decl.QualifiedName())
	}
	res.existing(def)
	return res, nil
}

// SwitchHeaderSource returns the counterpart of a header or source file.
func (e *Engine) SwitchHeaderSource(ctx context.Context, path string) (string, error) {
	if !pairing.IsHeader(e.Config.Pairing, path) && !pairing.IsSource(e.Config.Pairing, path) {
		return "", preconditionf("%s is not a C++ header or source file", path)
	}
	if e.Pairs == nil {
		return "", notFoundf("no matching file for %s", path)
	}
	paired, ok, err := e.Pairs.FindPairedFile(ctx, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", notFoundf("no matching file for %s", path)
	}
	return paired, nil
}
