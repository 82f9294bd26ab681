package refactor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/languages"
	_ "github.com/roveo/cppgen/languages/cpp"
)

func setup(t *testing.T, files map[string]string, configure func(*config.Config)) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	cfg := config.DefaultConfig()
	if configure != nil {
		configure(cfg)
	}
	return NewEngine(cfg, root), root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func belowClass(cfg *config.Config) {
	cfg.Accessors.GetterLocation = config.BelowClass
	cfg.Accessors.SetterLocation = config.BelowClass
}

func TestGenerateAccessorsBelowClass(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{"a.h": "class A { int m_x; };\n"}, belowClass)
	header := filepath.Join(root, "a.h")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "A::m_x"}, Both)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "class A { int m_x;\n" +
		"public:\n" +
		"    int getX() const;\n" +
		"    void setX(int x);\n" +
		"};\n" +
		"\n" +
		"int A::getX() const { return m_x; }\n" +
		"void A::setX(int x) { m_x = x; }\n"
	assert.Equal(t, want, readFile(t, header))

	require.NotNil(t, res.Cursor)
	assert.Equal(t, languages.Position{Line: 2, Character: 4}, res.Cursor.Range.Start)

	// a second run finds both accessors and changes nothing
	again, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "A::m_x"}, Both)
	require.NoError(t, err)
	assert.True(t, again.Edit.Empty())
	assert.Len(t, again.Existing, 2)
	assert.Len(t, again.Notices, 2)
}

func TestGenerateAccessorsInline(t *testing.T) {
	ctx := context.Background()
	src := "struct Config {\n    std::string name;\n};\n"
	e, root := setup(t, map[string]string{"config.h": src}, nil)
	header := filepath.Join(root, "config.h")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Position: &languages.Position{Line: 1, Character: 18}}, Getter)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "struct Config {\n" +
		"    std::string name;\n" +
		"    const std::string &getName() const { return name; }\n" +
		"};\n"
	assert.Equal(t, want, readFile(t, header))
}

func TestGenerateSetterNextToGetter(t *testing.T) {
	ctx := context.Background()
	src := "class P {\npublic:\n    int getAge() const;\n    void run();\n\nprivate:\n    int age;\n};\n"
	e, root := setup(t, map[string]string{"p.h": src}, nil)
	header := filepath.Join(root, "p.h")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "age"}, Setter)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "class P {\npublic:\n    int getAge() const;\n" +
		"    void setAge(int age) { this->age = age; }\n" +
		"    void run();\n\nprivate:\n    int age;\n};\n"
	assert.Equal(t, want, readFile(t, header))
}

func TestGenerateAccessorsConstMember(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{"b.h": "class B {\n    const int m_id = 1;\n};\n"}, nil)
	header := filepath.Join(root, "b.h")

	_, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "m_id"}, Setter)
	require.ErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, "class B {\n    const int m_id = 1;\n};\n", readFile(t, header))

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "m_id"}, Both)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Notices)
	assert.Equal(t, 1, res.Edit.Len())
}

func TestGenerateAccessorsPreconditions(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"c.h":       "class C {\npublic:\n    void run();\n    int m_values[4];\n};\n",
		"notes.txt": "hello\n",
	}, nil)
	header := filepath.Join(root, "c.h")

	_, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "run"}, Both)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = e.GenerateAccessors(ctx, Request{Path: header, Symbol: "m_values"}, Getter)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = e.GenerateAccessors(ctx, Request{Path: header, Symbol: "missing"}, Getter)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = e.GenerateAccessors(ctx, Request{Path: filepath.Join(root, "notes.txt"), Symbol: "x"}, Getter)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = e.GenerateAccessors(ctx, Request{Path: header, Position: &languages.Position{Line: 40, Character: 0}}, Getter)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestGenerateAccessorsTemplateStaysInHeader(t *testing.T) {
	ctx := context.Background()
	src := "template <typename T>\nclass Box {\n    T m_v;\n};\n"
	e, root := setup(t, map[string]string{"box.h": src, "box.cpp": "#include \"box.h\"\n"}, func(cfg *config.Config) {
		cfg.Accessors.GetterLocation = config.SourceFile
	})
	header := filepath.Join(root, "box.h")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "m_v"}, Getter)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))
	assert.NotEmpty(t, res.Notices)

	want := "template <typename T>\n" +
		"class Box {\n" +
		"    T m_v;\n" +
		"public:\n" +
		"    const T &getV() const;\n" +
		"};\n" +
		"\n" +
		"template <typename T>\n" +
		"const T &Box<T>::getV() const { return m_v; }\n"
	assert.Equal(t, want, readFile(t, header))
	assert.Equal(t, "#include \"box.h\"\n", readFile(t, filepath.Join(root, "box.cpp")))
}

func TestGenerateAccessorsIntoSourceFile(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"include/counter.h": "namespace app {\n\nclass Counter {\npublic:\n    Counter();\n\nprivate:\n    static int s_total;\n};\n\n}\n",
		"src/counter.cpp":   "#include \"counter.h\"\n\nnamespace app {\n\nCounter::Counter() {}\n\n}\n",
	}, func(cfg *config.Config) {
		cfg.Accessors.GetterLocation = config.SourceFile
		cfg.Accessors.SetterLocation = config.SourceFile
	})
	header := filepath.Join(root, "include", "counter.h")
	source := filepath.Join(root, "src", "counter.cpp")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "s_total"}, Both)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	assert.Contains(t, readFile(t, header), "    Counter();\n    static int getTotal();\n    static void setTotal(int total);\n")
	want := "#include \"counter.h\"\n\nnamespace app {\n\nCounter::Counter() {}\n\n" +
		"int Counter::getTotal() { return s_total; }\n" +
		"void Counter::setTotal(int total) { s_total = total; }\n" +
		"\n}\n"
	assert.Equal(t, want, readFile(t, source))
}

func TestGenerateAccessorsSwallowsBlanksBeforeCloser(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{"a.h": "class A { int m_x;   };\n"}, nil)
	header := filepath.Join(root, "a.h")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "A::m_x"}, Getter)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "class A { int m_x;\n" +
		"public:\n" +
		"    int getX() const { return m_x; }\n" +
		"};\n"
	assert.Equal(t, want, readFile(t, header))
	for i, line := range strings.Split(want, "\n") {
		assert.Equal(t, strings.TrimRight(line, " \t"), line, "line %d", i+1)
	}
}

func TestGenerateAccessorsDeterministic(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{"a.h": "class A { int m_x; };\n"}, belowClass)
	req := Request{Path: filepath.Join(root, "a.h"), Symbol: "m_x"}

	first, err := e.GenerateAccessors(ctx, req, Both)
	require.NoError(t, err)
	second, err := e.GenerateAccessors(ctx, req, Both)
	require.NoError(t, err)
	assert.Equal(t, first.Edit.Diff(), second.Edit.Diff())
}

func TestApplyStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{"a.h": "class A { int m_x; };\n"}, nil)
	header := filepath.Join(root, "a.h")

	res, err := e.GenerateAccessors(ctx, Request{Path: header, Symbol: "m_x"}, Getter)
	require.NoError(t, err)

	changed := "// edited\nclass A { int m_x; };\n"
	require.NoError(t, os.WriteFile(header, []byte(changed), 0644))

	err = e.Apply(ctx, res)
	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, changed, readFile(t, header))
}

func TestAddDefinitionToSourceFile(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h":   "class A {\npublic:\n    virtual void run(int times = 2) const override;\n};\n",
		"a.cpp": "#include \"a.h\"\n",
	}, nil)

	res, err := e.AddDefinition(ctx, Request{Path: filepath.Join(root, "a.h"), Symbol: "run"}, "")
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "#include \"a.h\"\n" +
		"\n" +
		"void A::run(int times) const\n" +
		"{\n" +
		"    \n" +
		"}\n"
	assert.Equal(t, want, readFile(t, filepath.Join(root, "a.cpp")))
	require.NotNil(t, res.Cursor)
	assert.Equal(t, filepath.Join(root, "a.cpp"), res.Cursor.Path)
	assert.Equal(t, languages.Position{Line: 4, Character: 4}, res.Cursor.Range.Start)
}

func TestAddDefinitionWrapsNamespace(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h":   "namespace ns {\nclass A {\npublic:\n    A();\n};\n}\n",
		"a.cpp": "#include \"a.h\"\n",
	}, func(cfg *config.Config) {
		cfg.Definitions.BraceStyle = config.SameLine
	})

	res, err := e.AddDefinition(ctx, Request{Path: filepath.Join(root, "a.h"), Symbol: "ns::A::A"}, config.SourceFile)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "#include \"a.h\"\n" +
		"\n" +
		"namespace ns {\n" +
		"    A::A() {\n" +
		"        \n" +
		"    }\n" +
		"} // namespace ns\n"
	assert.Equal(t, want, readFile(t, filepath.Join(root, "a.cpp")))
}

func TestAddDefinitionBraceStyles(t *testing.T) {
	const header = "class D {\npublic:\n    D(int a);\n    ~D();\n    void run();\n};\n"

	tests := []struct {
		style  config.BraceStyle
		symbol string
		want   string
	}{
		{config.SameLine, "D::D", "D::D(int a) {\n    \n}"},
		{config.SameLine, "D::run", "void D::run() {\n    \n}"},
		{config.NewLine, "D::D", "D::D(int a)\n{\n    \n}"},
		{config.NewLine, "D::run", "void D::run()\n{\n    \n}"},
		{config.NewLineForCtorDtor, "D::D", "D::D(int a)\n{\n    \n}"},
		{config.NewLineForCtorDtor, "D::~D", "D::~D()\n{\n    \n}"},
		{config.NewLineForCtorDtor, "D::run", "void D::run() {\n    \n}"},
	}
	for _, tt := range tests {
		t.Run(string(tt.style)+"/"+tt.symbol, func(t *testing.T) {
			ctx := context.Background()
			e, root := setup(t, map[string]string{
				"d.h":   header,
				"d.cpp": "#include \"d.h\"\n",
			}, func(cfg *config.Config) {
				cfg.Definitions.BraceStyle = tt.style
			})

			res, err := e.AddDefinition(ctx, Request{Path: filepath.Join(root, "d.h"), Symbol: tt.symbol}, config.SourceFile)
			require.NoError(t, err)
			require.NoError(t, e.Apply(ctx, res))

			assert.Equal(t, "#include \"d.h\"\n\n"+tt.want+"\n", readFile(t, filepath.Join(root, "d.cpp")))
		})
	}
}

func TestAddDefinitionPureVirtualDropsPureSpecifier(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h":   "class A {\npublic:\n    virtual void run() const = 0;\n};\n",
		"a.cpp": "#include \"a.h\"\n",
	}, func(cfg *config.Config) {
		cfg.Definitions.BraceStyle = config.SameLine
	})

	res, err := e.AddDefinition(ctx, Request{Path: filepath.Join(root, "a.h"), Symbol: "run"}, config.SourceFile)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	assert.Equal(t, "#include \"a.h\"\n\nvoid A::run() const {\n    \n}\n", readFile(t, filepath.Join(root, "a.cpp")))
}

func TestAddDefinitionNamespaceWrapperFollowsFile(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"e.h":   "namespace a {\n    namespace b {\n        void f();\n    }\n}\n",
		"e.cpp": "namespace a {\nvoid g() {}\n}\n",
	}, func(cfg *config.Config) {
		cfg.Definitions.BraceStyle = config.SameLine
	})
	require.True(t, e.Config.Formatting.IndentNamespaces())

	res, err := e.AddDefinition(ctx, Request{Path: filepath.Join(root, "e.h"), Symbol: "f"}, config.SourceFile)
	require.NoError(t, err)
	require.NoError(t, e.Apply(ctx, res))

	want := "namespace a {\n" +
		"void g() {}\n" +
		"\n" +
		"namespace b {\n" +
		"void f() {\n" +
		"    \n" +
		"}\n" +
		"} // namespace b\n" +
		"}\n"
	assert.Equal(t, want, readFile(t, filepath.Join(root, "e.cpp")))
}

func TestAddDefinitionBelowDeclarationWithoutSource(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{"math.h": "int add(int a, int b);\n"}, nil)
	header := filepath.Join(root, "math.h")

	res, err := e.AddDefinition(ctx, Request{Path: header, Symbol: "add"}, config.SourceFile)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Notices)
	require.NoError(t, e.Apply(ctx, res))

	want := "int add(int a, int b);\n\nint add(int a, int b)\n{\n    \n}\n"
	assert.Equal(t, want, readFile(t, header))
}

func TestAddDefinitionExisting(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h":   "class A {\npublic:\n    void run();\n};\n",
		"a.cpp": "#include \"a.h\"\n\nvoid A::run() {}\n",
	}, nil)

	res, err := e.AddDefinition(ctx, Request{Path: filepath.Join(root, "a.h"), Symbol: "run"}, "")
	require.NoError(t, err)
	assert.True(t, res.Edit.Empty())
	require.Len(t, res.Existing, 1)
	assert.Equal(t, filepath.Join(root, "a.cpp"), res.Existing[0].Path)
	assert.Equal(t, 2, res.Existing[0].Range.Start.Line)
}

func TestAddDefinitionPreconditions(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h": "class A {\npublic:\n    A() = default;\n    int m_x;\n};\n",
	}, nil)
	header := filepath.Join(root, "a.h")

	_, err := e.AddDefinition(ctx, Request{Path: header, Symbol: "m_x"}, "")
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = e.AddDefinition(ctx, Request{Path: header, Symbol: "A::A"}, "")
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = e.AddDefinition(ctx, Request{Path: header, Symbol: "m_x"}, config.Inline)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestFindDefinition(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h":   "class A {\npublic:\n    void run();\n    void stop();\n};\n",
		"a.cpp": "#include \"a.h\"\n\nvoid A::run() {}\n",
	}, nil)
	header := filepath.Join(root, "a.h")

	res, err := e.FindDefinition(ctx, Request{Path: header, Symbol: "run"})
	require.NoError(t, err)
	require.Len(t, res.Existing, 1)
	assert.Equal(t, filepath.Join(root, "a.cpp"), res.Existing[0].Path)

	_, err = e.FindDefinition(ctx, Request{Path: header, Symbol: "stop"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSwitchHeaderSource(t *testing.T) {
	ctx := context.Background()
	e, root := setup(t, map[string]string{
		"a.h":    "",
		"a.cpp":  "",
		"lone.h": "",
	}, nil)

	got, err := e.SwitchHeaderSource(ctx, filepath.Join(root, "a.h"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.cpp"), got)

	got, err = e.SwitchHeaderSource(ctx, filepath.Join(root, "a.cpp"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.h"), got)

	_, err = e.SwitchHeaderSource(ctx, filepath.Join(root, "lone.h"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.SwitchHeaderSource(ctx, filepath.Join(root, "README.md"))
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestErrorKinds(t *testing.T) {
	err := notFoundf("no definition of %s found", "A::run")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, "no definition of A::run found", err.Error())

	cause := errors.New("boom")
	wrapped := internal("edit not applied", cause)
	assert.ErrorIs(t, wrapped, ErrInternal)
	assert.ErrorIs(t, wrapped, cause)
}

func TestParseAccessorType(t *testing.T) {
	for in, want := range map[string]AccessorType{"getter": Getter, "setter": Setter, "both": Both, "": Both} {
		got, err := ParseAccessorType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAccessorType("deleter")
	assert.Error(t, err)
}
