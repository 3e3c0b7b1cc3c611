package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	p := NewParser()
	assert.NotNil(t, p)
	assert.NotNil(t, p.goParser)
	assert.NotNil(t, p.pyParser)
	assert.NotNil(t, p.jsParser)
	assert.NotNil(t, p.tsParser)
	assert.NotNil(t, p.tsxParser)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path     string
		expected Language
	}{
		{"main.go", LanguageGo},
		{"app.py", LanguagePython},
		{"index.js", LanguageJavaScript},
		{"index.jsx", LanguageJavaScript},
		{"index.mjs", LanguageJavaScript},
		{"app.ts", LanguageTypeScript},
		{"app.tsx", LanguageTSX},
		{"Main.java", LanguageJava},
		{"README.md", LanguageUnknown},
		{"Makefile", LanguageUnknown},
		{"/path/to/file.go", LanguageGo},
		{"/path/to/file.PY", LanguagePython}, // Case insensitive
		{"file.GO", LanguageGo},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := DetectLanguage(tt.path)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParser_ParseContent_Go(t *testing.T) {
	p := NewParser()
	content := []byte(`package main

func Add(a int, b int) int {
	return a + b
}
`)
	parsed, err := p.ParseContent(context.Background(), "test.go", content, LanguageGo)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, LanguageGo, parsed.Language)
	assert.Equal(t, "source_file", parsed.Root().Type())
	assert.Equal(t, content, parsed.Source)
}

func TestParser_ParseContent_Python(t *testing.T) {
	p := NewParser()
	content := []byte(`def add(a, b):
    return a + b
`)
	parsed, err := p.ParseContent(context.Background(), "test.py", content, LanguagePython)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, "module", parsed.Root().Type())
}

func TestParser_ParseContent_JavaScript(t *testing.T) {
	p := NewParser()
	content := []byte(`function greet(name) {
    return "Hello, " + name;
}
`)
	parsed, err := p.ParseContent(context.Background(), "test.js", content, LanguageJavaScript)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, "program", parsed.Root().Type())
}

func TestParser_ParseContent_TypeScript_Annotated(t *testing.T) {
	p := NewParser()
	// Type annotations must parse cleanly, spans feed byte-exact splicing
	content := []byte(`function clamp(value: number, max: number): number {
    if (value >= max) {
        return max;
    }
    return value;
}
`)
	parsed, err := p.ParseContent(context.Background(), "test.ts", content, LanguageTypeScript)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, "program", parsed.Root().Type())
	assert.False(t, parsed.Root().HasError())
}

func TestParser_ParseContent_TSX(t *testing.T) {
	p := NewParser()
	content := []byte(`function Widget({ on }: { on: boolean }) {
    return on ? <span>on</span> : <span>off</span>;
}
`)
	parsed, err := p.ParseContent(context.Background(), "widget.tsx", content, LanguageTSX)
	require.NoError(t, err)
	defer parsed.Close()

	assert.False(t, parsed.Root().HasError())
}

func TestParser_ParseContent_UnsupportedLanguage(t *testing.T) {
	p := NewParser()
	_, err := p.ParseContent(context.Background(), "test.java", []byte("class Test {}"), LanguageJava)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestParser_ParseContent_EmptyFile(t *testing.T) {
	p := NewParser()
	parsed, err := p.ParseContent(context.Background(), "test.go", []byte(""), LanguageGo)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, uint32(0), parsed.Root().ChildCount())
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(path, []byte("package sample\n\nvar ok = true\n"), 0644))

	p := NewParser()
	parsed, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	defer parsed.Close()

	assert.Equal(t, path, parsed.Path)
	assert.Equal(t, LanguageGo, parsed.Language)
}

func TestParser_ParseFile_NonExistent(t *testing.T) {
	p := NewParser()
	_, err := p.ParseFile(context.Background(), "/nonexistent/file.go")
	assert.Error(t, err)
}

func TestParser_ParseFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xyz")
	require.NoError(t, os.WriteFile(path, []byte("whatever"), 0644))

	p := NewParser()
	_, err := p.ParseFile(context.Background(), path)
	assert.Error(t, err)
}

func TestParsedSource_Close(t *testing.T) {
	p := NewParser()
	parsed, err := p.ParseContent(context.Background(), "test.go", []byte("package main\n"), LanguageGo)
	require.NoError(t, err)

	parsed.Close()
	assert.Nil(t, parsed.Tree)
	// Closing twice must be safe
	parsed.Close()
}

func TestLanguageConstants(t *testing.T) {
	assert.Equal(t, Language("go"), LanguageGo)
	assert.Equal(t, Language("python"), LanguagePython)
	assert.Equal(t, Language("javascript"), LanguageJavaScript)
	assert.Equal(t, Language("typescript"), LanguageTypeScript)
	assert.Equal(t, Language("tsx"), LanguageTSX)
	assert.Equal(t, Language("java"), LanguageJava)
	assert.Equal(t, Language("unknown"), LanguageUnknown)
}
