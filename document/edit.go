package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/languages"
)

// Insertion is one pending text insertion into a document snapshot.
type Insertion struct {
	Document *Document
	Position languages.Position
	Text     string

	offset   int
	replaced int
	seq      int
}

// WorkspaceEdit accumulates insertions across documents and commits them as
// one transaction. Insertions at the same offset are applied in the order
// they were added.
type WorkspaceEdit struct {
	docs    []*Document
	inserts map[string][]*Insertion
	seq     int
}

// NewWorkspaceEdit returns an empty edit set.
func NewWorkspaceEdit() *WorkspaceEdit {
	return &WorkspaceEdit{inserts: make(map[string][]*Insertion)}
}

// Insert records text to be inserted at pos in doc. The position is validated
// against the snapshot immediately. All insertions for one path must come
// from the same snapshot.
func (w *WorkspaceEdit) Insert(doc *Document, pos languages.Position, text string) (*Insertion, error) {
	return w.Replace(doc, pos, 0, text)
}

// Replace is Insert that also drops the n bytes following pos. Later
// insertions at the same offset land after text.
func (w *WorkspaceEdit) Replace(doc *Document, pos languages.Position, n int, text string) (*Insertion, error) {
	offset, err := doc.OffsetAt(pos)
	if err != nil {
		return nil, err
	}
	if n < 0 || offset+n > len(doc.Text()) {
		return nil, fmt.Errorf("%w: %d bytes after %d:%d", ErrOutOfBounds, n, pos.Line+1, pos.Character+1)
	}
	if existing := w.document(doc.Path); existing == nil {
		w.docs = append(w.docs, doc)
	} else if existing.Fingerprint() != doc.Fingerprint() {
		return nil, fmt.Errorf("%w: %s mixes two snapshots in one edit", ErrStaleSnapshot, doc.Path)
	}

	w.seq++
	ins := &Insertion{Document: doc, Position: pos, Text: text, offset: offset, replaced: n, seq: w.seq}
	w.inserts[doc.Path] = append(w.inserts[doc.Path], ins)
	return ins, nil
}

// Empty reports whether the edit has no insertions.
func (w *WorkspaceEdit) Empty() bool { return w == nil || w.seq == 0 }

// Len returns the number of insertions.
func (w *WorkspaceEdit) Len() int {
	if w == nil {
		return 0
	}
	return w.seq
}

// Documents returns the touched documents in the order they were first edited.
func (w *WorkspaceEdit) Documents() []*Document {
	if w == nil {
		return nil
	}
	return w.docs
}

// Insertions returns the insertions for path in application order.
func (w *WorkspaceEdit) Insertions(path string) []*Insertion {
	list := append([]*Insertion(nil), w.inserts[path]...)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].offset != list[j].offset {
			return list[i].offset < list[j].offset
		}
		return list[i].seq < list[j].seq
	})
	return list
}

// Render returns the text of doc after applying its insertions.
func (w *WorkspaceEdit) Render(doc *Document) string {
	text := doc.Text()
	var sb strings.Builder
	last := 0
	for _, ins := range w.Insertions(doc.Path) {
		if ins.offset > last {
			sb.WriteString(text[last:ins.offset])
			last = ins.offset
		}
		sb.WriteString(ins.Text)
		last = max(last, ins.offset+ins.replaced)
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// RenderedOffset returns where the text of ins starts in the rendered document.
func (w *WorkspaceEdit) RenderedOffset(ins *Insertion) int {
	out, last := 0, 0
	for _, other := range w.Insertions(ins.Document.Path) {
		if other.offset > last {
			out += other.offset - last
			last = other.offset
		}
		if other == ins {
			break
		}
		out += len(other.Text)
		last = max(last, other.offset+other.replaced)
	}
	return out
}

// Diff renders the whole edit as a unified diff.
func (w *WorkspaceEdit) Diff() string {
	var sb strings.Builder
	for _, doc := range w.Documents() {
		sb.WriteString(UnifiedDiff(doc.Path, doc.Text(), w.Render(doc)))
	}
	return sb.String()
}

// Apply commits every insertion. Each target is re-read and compared with
// the snapshot the insertions were computed against; any mismatch aborts the
// whole transaction before anything is written. A failed write rolls back
// documents already written.
func (w *WorkspaceEdit) Apply(ctx context.Context, store Store) error {
	if w.Empty() {
		return nil
	}

	rendered := make([]string, len(w.docs))
	for i, doc := range w.docs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("edit aborted: %w", err)
		}
		current, err := store.Open(ctx, doc.Path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrStaleSnapshot, doc.Path, err)
		}
		if current.Fingerprint() != doc.Fingerprint() {
			return fmt.Errorf("%w: %s", ErrStaleSnapshot, doc.Path)
		}
		rendered[i] = w.Render(doc)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("edit aborted: %w", err)
	}

	for i, doc := range w.docs {
		if err := store.Write(ctx, doc.Path, rendered[i]); err != nil {
			var errs []error
			errs = append(errs, err)
			for _, written := range w.docs[:i] {
				if rbErr := store.Write(context.WithoutCancel(ctx), written.Path, written.Text()); rbErr != nil {
					errs = append(errs, fmt.Errorf("rollback %s: %w", written.Path, rbErr))
				}
			}
			return errors.Join(errs...)
		}
		log.Debug().Str("file", doc.Path).Int("insertions", len(w.inserts[doc.Path])).Msg("applied edit")
	}
	return nil
}

func (w *WorkspaceEdit) document(path string) *Document {
	for _, doc := range w.docs {
		if doc.Path == path {
			return doc
		}
	}
	return nil
}
