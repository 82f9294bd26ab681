package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/languages"
)

func makeRange(name string, kind languages.Kind, line int) *languages.CodeRange {
	return &languages.CodeRange{
		Name: name,
		Kind: kind,
		Range: languages.Range{
			Start: languages.Position{Line: line},
			End:   languages.Position{Line: line + 5},
		},
	}
}

func makeTestFiles(count int, symbolsPerFile int) []FileIndex {
	files := make([]FileIndex, count)
	for i := 0; i < count; i++ {
		files[i] = FileIndex{
			Path:     "file" + string(rune('a'+i)) + ".hpp",
			Language: "cpp",
			Symbols:  makeSymbols(symbolsPerFile),
		}
	}
	return files
}

func makeTestFilesInDirs(dirs []string, symbolsPerFile int) []FileIndex {
	var files []FileIndex
	for _, dir := range dirs {
		path := dir + "/main.cpp"
		if dir == "" {
			path = "main.cpp"
		}
		files = append(files, FileIndex{
			Path:     path,
			Language: "cpp",
			Symbols:  makeSymbols(symbolsPerFile),
		})
	}
	return files
}

func TestFileLineCount(t *testing.T) {
	tests := []struct {
		name     string
		symbols  int
		expected int
	}{
		{"empty file", 0, 0},
		{"one symbol", 1, 3},   // header + 1 symbol + blank
		{"five symbols", 5, 7}, // header + 5 symbols + blank
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := makeTestFiles(1, tt.symbols)[0]
			got := fileLineCount(file)
			if got != tt.expected {
				t.Errorf("fileLineCount() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestBuildDirTree(t *testing.T) {
	files := makeTestFilesInDirs([]string{"", "cmd", "pkg/api", "pkg/util"}, 5)

	tree := buildDirTree(files, FormatOptions{})

	// Root should have files from "" and children "cmd", "pkg"
	if len(tree.files) != 1 {
		t.Errorf("root should have 1 file, got %d", len(tree.files))
	}
	if len(tree.children) != 2 {
		t.Errorf("root should have 2 children, got %d", len(tree.children))
	}

	// Check pkg has 2 children (api, util)
	pkg := tree.children["pkg"]
	if pkg == nil {
		t.Fatal("pkg directory not found")
	}
	if len(pkg.children) != 2 {
		t.Errorf("pkg should have 2 children, got %d", len(pkg.children))
	}
}

func TestCountLines(t *testing.T) {
	files := makeTestFilesInDirs([]string{"", "cmd", "pkg/api"}, 5)
	tree := buildDirTree(files, FormatOptions{})

	// Each file with 5 symbols = 7 lines (1 header + 5 symbols + 1 blank)
	// 3 files = 21 lines
	expectedTotal := 21

	if tree.lines != expectedTotal {
		t.Errorf("total lines = %d, want %d", tree.lines, expectedTotal)
	}
}

func TestPruneToLimit_NoLimit(t *testing.T) {
	files := makeTestFiles(5, 10) // 5 files, 10 symbols each

	tree := buildDirTree(files, FormatOptions{})
	prunedFiles, prunedDirs := pruneToLimit(tree, 0)

	if len(prunedFiles) != 5 {
		t.Errorf("expected 5 files, got %d", len(prunedFiles))
	}
	if len(prunedDirs) != 0 {
		t.Errorf("expected no pruned dirs, got %v", prunedDirs)
	}
}

func TestPruneToLimit_UnderLimit(t *testing.T) {
	files := makeTestFiles(2, 5) // 2 files, 5 symbols each = 14 lines

	tree := buildDirTree(files, FormatOptions{})
	prunedFiles, prunedDirs := pruneToLimit(tree, 100)

	if len(prunedFiles) != 2 {
		t.Errorf("expected 2 files, got %d", len(prunedFiles))
	}
	if len(prunedDirs) != 0 {
		t.Errorf("expected no pruned dirs, got %v", prunedDirs)
	}
}

func TestPruneToLimit_PrunesLargestFirst(t *testing.T) {
	// Create files in different directories with different sizes
	files := []FileIndex{
		{Path: "small/a.hpp", Language: "cpp", Symbols: makeSymbols(2)},
		{Path: "large/b.hpp", Language: "cpp", Symbols: makeSymbols(20)},
		{Path: "medium/c.hpp", Language: "cpp", Symbols: makeSymbols(10)},
	}

	// small = 4 lines, large = 22 lines, medium = 12 lines
	// Total = 38 lines
	// With limit 20, should prune "large" first (22 lines)
	tree := buildDirTree(files, FormatOptions{})
	prunedFiles, prunedDirs := pruneToLimit(tree, 20)

	// Should have small and medium, large should be pruned
	if len(prunedFiles) != 2 {
		t.Errorf("expected 2 files, got %d", len(prunedFiles))
	}

	// large directory should be pruned
	if len(prunedDirs) != 1 || prunedDirs[0] != "large" {
		t.Errorf("expected [large] to be pruned, got %v", prunedDirs)
	}
}

func makeSymbols(count int) []*languages.CodeRange {
	symbols := make([]*languages.CodeRange, count)
	for i := 0; i < count; i++ {
		symbols[i] = makeRange("symbol", languages.KindFunction, i*10)
	}
	return symbols
}

func TestFormatCodemap_WithLineLimit(t *testing.T) {
	// Create files in directories to trigger directory pruning
	// Each file with 20 symbols = 22 lines (header + 20 symbols + blank)
	files := []FileIndex{
		{Path: "dir1/a.cpp", Language: "cpp", Symbols: makeSymbols(20)},
		{Path: "dir2/b.cpp", Language: "cpp", Symbols: makeSymbols(20)},
		{Path: "dir3/c.cpp", Language: "cpp", Symbols: makeSymbols(20)},
		{Path: "dir4/d.cpp", Language: "cpp", Symbols: makeSymbols(20)},
		{Path: "dir5/e.cpp", Language: "cpp", Symbols: makeSymbols(20)},
	}
	// Total = 5 * 22 = 110 lines

	output := FormatCodemap(files, FormatOptions{
		LineLimit: 50,
	})

	// Output should be under limit (approximately)
	lines := strings.Split(output, "\n")
	// Allow some overhead for the pruning notice header
	if len(lines) > 60 {
		t.Errorf("output should be around 50 lines, got %d", len(lines))
	}

	// Should have pruning notice
	if !strings.Contains(output, "pruned") {
		t.Errorf("output should contain pruning notice, got:\n%s", output)
	}
}

func TestFormatCodemap_NoLimitUsesDefault(t *testing.T) {
	// With LineLimit = 0, should use DefaultLineLimit (1000)
	files := makeTestFiles(5, 10) // 5 files, 10 symbols each = 60 lines

	output := FormatCodemap(files, FormatOptions{
		LineLimit: 0, // Should use DefaultLineLimit
	})

	// Should NOT have pruning notice since 60 < 1000
	if strings.Contains(output, "pruned") {
		t.Errorf("output should not contain pruning notice for small outputs")
	}
}

func TestFormatCodemap_FilterOverridesSkip(t *testing.T) {
	files := []FileIndex{
		{Path: "vendor/lib.hpp", Language: "cpp", Symbols: makeSymbols(5)},
		{Path: "main.cpp", Language: "cpp", Symbols: makeSymbols(5)},
	}

	// Without filter, vendor should be skipped
	output := FormatCodemap(files, FormatOptions{
		SkipPatterns: []string{"vendor"},
	})
	if !strings.Contains(output, "skipped by default") {
		t.Errorf("vendor should be skipped")
	}

	// With filter on vendor, it should be included
	output = FormatCodemap(files, FormatOptions{
		SkipPatterns: []string{"vendor"},
		Filter:       "vendor",
	})
	if strings.Contains(output, "skipped") {
		t.Errorf("vendor should NOT be skipped when filtered")
	}
	if !strings.Contains(output, "vendor/lib.hpp") {
		t.Errorf("vendor/lib.hpp should be in output")
	}
}

func TestMatchesFilter(t *testing.T) {
	tests := []struct {
		filePath string
		filter   string
		expected bool
	}{
		{"cmd/main.cpp", "cmd", true},
		{"cmd/main.cpp", "cmd/", true},
		{"cmd/main.cpp", "cmd/main.cpp", true},
		{"cmd/sub/main.cpp", "cmd", true},
		{"pkg/main.cpp", "cmd", false},
		{"cmdx/main.cpp", "cmd", false},
		{"./cmd/main.cpp", "cmd", true},
		{"cmd/main.cpp", "./cmd", true},
	}

	for _, tt := range tests {
		t.Run(tt.filePath+"_"+tt.filter, func(t *testing.T) {
			got := matchesFilter(tt.filePath, tt.filter)
			if got != tt.expected {
				t.Errorf("matchesFilter(%q, %q) = %v, want %v",
					tt.filePath, tt.filter, got, tt.expected)
			}
		})
	}
}

func TestIsSkipped(t *testing.T) {
	patterns := []string{"vendor", "internal/gen"}

	tests := []struct {
		filePath string
		expected bool
	}{
		{"vendor/lib.hpp", true},
		{"vendor/sub/lib.hpp", true},
		{"internal/gen/types.hpp", true},
		{"internal/gen/sub/types.hpp", true},
		{"internal/other/types.hpp", false},
		{"vendorx/lib.hpp", false},
		{"main.cpp", false},
	}

	for _, tt := range tests {
		t.Run(tt.filePath, func(t *testing.T) {
			got := isSkipped(tt.filePath, patterns)
			if got != tt.expected {
				t.Errorf("isSkipped(%q, patterns) = %v, want %v",
					tt.filePath, got, tt.expected)
			}
		})
	}
}

func TestPruneToLimit_DropsFilesInFlatTree(t *testing.T) {
	files := makeTestFiles(5, 10) // 12 lines each, all in the root directory

	tree := buildDirTree(files, FormatOptions{})
	prunedFiles, prunedDirs := pruneToLimit(tree, 30)

	if len(prunedDirs) != 0 {
		t.Errorf("expected no pruned dirs, got %v", prunedDirs)
	}
	if len(prunedFiles) != 2 {
		t.Fatalf("expected 2 files, got %d", len(prunedFiles))
	}
	if prunedFiles[0].Path != "filed.hpp" || prunedFiles[1].Path != "filee.hpp" {
		t.Errorf("unexpected remaining files: %s, %s", prunedFiles[0].Path, prunedFiles[1].Path)
	}
}

func TestFileLineCountNested(t *testing.T) {
	ns := makeRange("geo", languages.KindNamespace, 0)
	cls := makeRange("Point", languages.KindClass, 1)
	cls.AddChild(makeRange("x", languages.KindField, 2))
	cls.AddChild(makeRange("norm", languages.KindMethod, 3))
	ns.AddChild(cls)

	file := FileIndex{Path: "geo/point.hpp", Language: "cpp", Symbols: []*languages.CodeRange{ns}}
	// header + 4 ranges + blank
	if got := fileLineCount(file); got != 6 {
		t.Errorf("fileLineCount() = %d, want 6", got)
	}
}

func TestFormatCodemap_Nested(t *testing.T) {
	ns := makeRange("geo", languages.KindNamespace, 0)
	ns.Range.End.Line = 9
	cls := makeRange("Point", languages.KindClass, 1)
	cls.Detail = "template"
	cls.AddChild(&languages.CodeRange{Name: "x", Kind: languages.KindField, Range: languages.Range{
		Start: languages.Position{Line: 2}, End: languages.Position{Line: 2, Character: 10},
	}})
	ns.AddChild(cls)

	output := FormatCodemap([]FileIndex{
		{Path: "geo/point.hpp", Language: "cpp", Symbols: []*languages.CodeRange{ns}},
	}, FormatOptions{})

	want := "## geo/point.hpp\n" +
		"  namespace geo [1-10]\n" +
		"    template class Point [2-7]\n" +
		"      field x [3]\n" +
		"\n"
	if output != want {
		t.Errorf("FormatCodemap() =\n%s\nwant:\n%s", output, want)
	}
}

func TestIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "include/geo/point.hpp", "namespace geo {\nclass Point {\n    int m_x;\n};\n}\n")
	writeTestFile(t, dir, "src/point.cpp", "int answer() { return 42; }\n")
	writeTestFile(t, dir, "README.md", "# geo\n")
	writeTestFile(t, dir, "build/gen.hpp", "struct Gen {};\n")
	writeTestFile(t, dir, ".gitignore", "build/\n")

	files, err := IndexDirectory(context.Background(), document.NewStore(), dir)
	if err != nil {
		t.Fatalf("IndexDirectory() error: %v", err)
	}

	paths := make(map[string]FileIndex)
	for _, f := range files {
		paths[f.Path] = f
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 indexed files, got %v", files)
	}
	header, ok := paths["include/geo/point.hpp"]
	if !ok {
		t.Fatalf("header not indexed: %v", files)
	}
	if header.Language != "cpp" {
		t.Errorf("language = %q, want cpp", header.Language)
	}
	if len(header.Symbols) != 1 || header.Symbols[0].Kind != languages.KindNamespace {
		t.Errorf("expected a single namespace at top level, got %v", header.Symbols)
	}
	if _, ok := paths["src/point.cpp"]; !ok {
		t.Errorf("source not indexed: %v", files)
	}
}
