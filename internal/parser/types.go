package parser

import sitter "github.com/smacker/go-tree-sitter"

// Language represents a programming language
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJava       Language = "java"
	LanguageUnknown    Language = "unknown"
)

// ParsedSource is one parsed source file: the raw bytes plus the syntax
// tree over them. It owns the tree; Close releases it.
type ParsedSource struct {
	Path     string
	Language Language
	Source   []byte
	Tree     *sitter.Tree
}

// Root returns the tree's root node.
func (ps *ParsedSource) Root() *sitter.Node {
	return ps.Tree.RootNode()
}

// Close releases the underlying tree.
func (ps *ParsedSource) Close() {
	if ps.Tree != nil {
		ps.Tree.Close()
		ps.Tree = nil
	}
}
