package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// NodeRange converts a tree-sitter node to a Range
func NodeRange(node *sitter.Node) Range {
	return SpanRange(node, node)
}

// SpanRange returns the range from the start of first to the end of last
func SpanRange(first, last *sitter.Node) Range {
	start := first.StartPoint()
	end := last.EndPoint()
	return Range{
		Start: Position{Line: int(start.Row), Character: int(start.Column)},
		End:   Position{Line: int(end.Row), Character: int(end.Column)},
	}
}
