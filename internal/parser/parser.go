package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser parses source files into tree-sitter syntax trees with byte-exact
// position information, which is what mutation needs to splice token spans.
type Parser struct {
	goParser  *sitter.Parser
	pyParser  *sitter.Parser
	jsParser  *sitter.Parser
	tsParser  *sitter.Parser
	tsxParser *sitter.Parser
}

// NewParser creates a parser with all supported grammars wired.
func NewParser() *Parser {
	goParser := sitter.NewParser()
	goParser.SetLanguage(golang.GetLanguage())

	pyParser := sitter.NewParser()
	pyParser.SetLanguage(python.GetLanguage())

	jsParser := sitter.NewParser()
	jsParser.SetLanguage(javascript.GetLanguage())

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(typescript.GetLanguage())

	tsxParser := sitter.NewParser()
	tsxParser.SetLanguage(tsx.GetLanguage())

	return &Parser{
		goParser:  goParser,
		pyParser:  pyParser,
		jsParser:  jsParser,
		tsParser:  tsParser,
		tsxParser: tsxParser,
	}
}

// ParseFile reads and parses a single file.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*ParsedSource, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", filePath)
	}

	return p.ParseContent(ctx, filePath, content, lang)
}

// ParseContent parses source bytes. The returned ParsedSource owns the tree;
// callers must Close it.
func (p *Parser) ParseContent(ctx context.Context, filePath string, content []byte, lang Language) (*ParsedSource, error) {
	var parser *sitter.Parser
	switch lang {
	case LanguageGo:
		parser = p.goParser
	case LanguagePython:
		parser = p.pyParser
	case LanguageJavaScript:
		parser = p.jsParser
	case LanguageTypeScript:
		parser = p.tsParser
	case LanguageTSX:
		parser = p.tsxParser
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParsedSource{
		Path:     filePath,
		Language: lang,
		Source:   content,
		Tree:     tree,
	}, nil
}

// DetectLanguage detects language from file extension
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".go":
		return LanguageGo
	case ".py":
		return LanguagePython
	case ".js", ".jsx", ".mjs":
		return LanguageJavaScript
	case ".ts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTSX
	case ".java":
		return LanguageJava
	default:
		return LanguageUnknown
	}
}
