// Package refactor implements the code generation commands: accessors,
// out-of-line definitions, definition lookup and header/source switching.
//
// Every command reads one consistent set of document snapshots, computes all
// of its insertions against them and returns them as a single
// document.WorkspaceEdit. Nothing is written until the caller applies the
// edit, which fails as a whole if any document changed in the meantime.
package refactor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/pairing"
	"github.com/roveo/cppgen/symbol"
)

// SymbolProvider discovers the symbol tree of a document.
type SymbolProvider interface {
	DocumentSymbols(ctx context.Context, doc *document.Document) (*languages.CodeRange, error)
}

// PairFinder resolves the header of a source file or the source of a header.
type PairFinder interface {
	FindPairedFile(ctx context.Context, path string) (string, bool, error)
}

// TreeSitterSymbols is the default SymbolProvider, backed by the language
// registry.
type TreeSitterSymbols struct {
	languages.Provider
}

func (p TreeSitterSymbols) DocumentSymbols(ctx context.Context, doc *document.Document) (*languages.CodeRange, error) {
	return p.DiscoverFile(ctx, doc.Path, []byte(doc.Text()))
}

// Engine runs refactoring commands.
type Engine struct {
	Store   document.Store
	Symbols SymbolProvider
	Pairs   PairFinder
	Config  *config.Config
}

// NewEngine returns an Engine reading files through afs, discovering
// symbols with tree-sitter and searching root for paired files.
func NewEngine(cfg *config.Config, root string) *Engine {
	store := document.NewStore()
	return &Engine{
		Store:   store,
		Symbols: TreeSitterSymbols{},
		Pairs:   pairing.NewFinder(store, cfg.Pairing, root),
		Config:  cfg,
	}
}

// Request identifies the symbol a command works on: a 0-based position in
// Path, or a name such as "Widget::m_size".
type Request struct {
	Path     string
	Position *languages.Position
	Symbol   string
}

// Location is a range in a file.
type Location struct {
	Path  string          `json:"path"`
	Range languages.Range `json:"range"`
}

// Result is the outcome of a command. Edit is empty when nothing needs to
// be generated; Notices then explain why.
type Result struct {
	Edit     *document.WorkspaceEdit
	Cursor   *Location
	Notices  []string
	Existing []Location
}

func newResult() *Result {
	return &Result{Edit: document.NewWorkspaceEdit()}
}

func (r *Result) notice(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Notices = append(r.Notices, msg)
	log.Info().Msg(msg)
}

func (r *Result) existing(s *symbol.Symbol) {
	r.Existing = append(r.Existing, locationOf(s))
}

func locationOf(s *symbol.Symbol) Location {
	return Location{Path: s.Doc.Path, Range: s.Range()}
}

// Apply commits the result's edit.
func (e *Engine) Apply(ctx context.Context, r *Result) error {
	if r == nil || r.Edit.Empty() {
		return nil
	}
	if err := r.Edit.Apply(ctx, e.Store); err != nil {
		if errors.Is(err, document.ErrStaleSnapshot) {
			return internal("edit not applied", err)
		}
		return fmt.Errorf("edit not applied: %w", err)
	}
	return nil
}

func (e *Engine) fileOptions() symbol.Options {
	return symbol.Options{
		IndentUnit:       e.Config.Formatting.Indent,
		IndentNamespaces: e.Config.Formatting.IndentNamespaces(),
	}
}

// open reads path and classifies its symbols.
func (e *Engine) open(ctx context.Context, path string) (*symbol.SourceFile, error) {
	if languages.GetLanguageForFile(path) == nil {
		return nil, preconditionf("unsupported file type: %s", path)
	}
	doc, err := e.Store.Open(ctx, path)
	if err != nil {
		return nil, &Error{Kind: KindPrecondition, Msg: "cannot open " + path, Err: err}
	}
	root, err := e.Symbols.DocumentSymbols(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("symbol discovery failed for %s: %w", path, err)
	}
	file, err := symbol.NewSourceFile(doc, root, e.fileOptions())
	if err != nil {
		return nil, internal("symbol tree does not match "+path, err)
	}
	return file, nil
}

func (e *Engine) isHeader(file *symbol.SourceFile) bool {
	return pairing.IsHeader(e.Config.Pairing, file.Path())
}

// cursorLocation returns the position rel bytes into the text of ins, in
// the document as it reads after the edit.
func cursorLocation(edit *document.WorkspaceEdit, ins *document.Insertion, rel int) *Location {
	doc := ins.Document
	rendered := document.New(doc.Path, edit.Render(doc))
	pos := rendered.PositionAt(edit.RenderedOffset(ins) + rel)
	return &Location{Path: doc.Path, Range: languages.Range{Start: pos, End: pos}}
}

// openSourcePair opens the implementation file paired with a header. It
// returns nil when file is not a header or has no pair.
func (e *Engine) openSourcePair(ctx context.Context, file *symbol.SourceFile) (*symbol.SourceFile, error) {
	if e.Pairs == nil || !e.isHeader(file) {
		return nil, nil
	}
	return e.openPair(ctx, file)
}

func (e *Engine) openPair(ctx context.Context, file *symbol.SourceFile) (*symbol.SourceFile, error) {
	if e.Pairs == nil {
		return nil, nil
	}
	path, ok, err := e.Pairs.FindPairedFile(ctx, file.Path())
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Debug().Str("file", file.Path()).Msg("no paired file")
		return nil, nil
	}
	return e.open(ctx, path)
}

// resolve finds the symbol a request points at.
func resolve(file *symbol.SourceFile, req Request) (*symbol.Symbol, error) {
	switch {
	case req.Symbol != "":
		if s := file.FindByName(req.Symbol); s != nil {
			return s, nil
		}
		return nil, preconditionf("no symbol named %q in %s", req.Symbol, file.Path())
	case req.Position != nil:
		if _, err := file.Doc.OffsetAt(*req.Position); err != nil {
			return nil, internal("invalid cursor position", err)
		}
		if s := file.SymbolAt(*req.Position); s != nil {
			return s, nil
		}
		return nil, preconditionf("no symbol at %d:%d in %s", req.Position.Line+1, req.Position.Character+1, file.Path())
	}
	return nil, preconditionf("a position or a symbol name is required")
}

// findDefinition searches the declaring file, then its pair.
func findDefinition(decl *symbol.Symbol, files ...*symbol.SourceFile) *symbol.Symbol {
	for _, f := range slices.DeleteFunc(files, func(f *symbol.SourceFile) bool { return f == nil }) {
		if def := f.FindDefinition(decl); def != nil {
			return def
		}
	}
	return nil
}
