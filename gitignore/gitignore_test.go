package gitignore

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMatcher_Match(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":     "*.o\ngenerated/\n!keep.o\n",
		"lib/.gitignore": "*.tmp\n",
	})

	m, err := New(root)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"main.o", false, true},
		{"src/widget.o", false, true},
		{"keep.o", false, false},
		{"widget.cpp", false, false},
		{"generated", true, true},
		{"generated/api.h", false, true},
		{"lib/cache.tmp", false, true},
		{"cache.tmp", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := m.Match(tt.path, tt.isDir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestMatcher_Nil(t *testing.T) {
	var m *Matcher
	if m.Match("anything", false) {
		t.Error("nil matcher should not match")
	}
}

func TestNew_NoGitignore(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if m.Match("a.cpp", false) {
		t.Error("expected no match without .gitignore")
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":           "ignored/\n",
		"src/widget.cpp":       "",
		"include/widget.h":     "",
		"ignored/widget.cpp":   "",
		".hidden/widget.h":     "",
		"node_modules/x/y.h":   "",
		"include/.swap.h":      "",
		"include/nested/a.hpp": "",
	})

	var got []string
	err := Walk(context.Background(), root, func(path, rel string) error {
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk error: %v", err)
	}

	want := []string{"include/nested/a.hpp", "include/widget.h", "src/widget.cpp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk visited %v, want %v", got, want)
	}
}

func TestWalkCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.h": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Walk(ctx, root, func(path, rel string) error {
		t.Errorf("unexpected visit of %s", rel)
		return nil
	})
	if err == nil {
		t.Error("expected cancellation error")
	}
}
