package mutation

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mutgate-hq/mutgate/internal/parser"
)

// conditionFunc resolves the condition operand of a decision node, or
// nil when the node has none (a bare range loop, for example).
type conditionFunc func(parent *sitter.Node) *sitter.Node

// grammar captures what the collector needs to know about one
// language: which ancestors make an expression a decision condition,
// which ancestors rule candidacy out entirely, and which nodes own
// mutable operator tokens.
type grammar struct {
	// decision maps a node type to the resolver for its condition
	// operand; a candidate is accepted only when the walk arrives at
	// the decision node from exactly that operand
	decision map[string]conditionFunc

	// blocked node types end the walk immediately: literal
	// initializers, declarations, default values, decorators
	blocked map[string]bool

	// operatorParents are the node types whose anonymous children
	// are operator tokens eligible for swapping
	operatorParents map[string]bool
}

// inDecisionContext walks the ancestor chain of a candidate node. A
// blocked ancestor rejects on type alone; a decision ancestor accepts
// only if the walk arrived through its condition operand; reaching the
// root rejects.
func (g *grammar) inDecisionContext(node *sitter.Node) bool {
	child := node
	for {
		parent := child.Parent()
		if parent == nil {
			return false
		}
		ptype := parent.Type()
		if g.blocked[ptype] {
			return false
		}
		if resolve, ok := g.decision[ptype]; ok {
			if cond := resolve(parent); cond != nil && sameSpan(cond, child) {
				return true
			}
			// arrived through the body or an init clause, keep going
		}
		child = parent
	}
}

// sameSpan reports whether two nodes cover the same bytes. Sibling
// spans never overlap, so this identifies a node among its parent's
// children without pointer comparison.
func sameSpan(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func conditionField(parent *sitter.Node) *sitter.Node {
	return parent.ChildByFieldName("condition")
}

// goForCondition handles Go's while-style loop, where the condition is
// a bare expression child without a field name. Three-clause loops
// carry their condition on the inner for_clause instead.
func goForCondition(parent *sitter.Node) *sitter.Node {
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(i)
		switch child.Type() {
		case "block", "for_clause", "range_clause":
			continue
		}
		return child
	}
	return nil
}

// pyTernaryCondition extracts the condition of a Python conditional
// expression (x if cond else y): the first named child after the "if"
// token, since the grammar assigns no fields here.
func pyTernaryCondition(parent *sitter.Node) *sitter.Node {
	seenIf := false
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if !child.IsNamed() {
			if child.Type() == "if" {
				seenIf = true
			}
			continue
		}
		if seenIf {
			return child
		}
	}
	return nil
}

// pyAssertCondition extracts the asserted expression: the first named
// child. A trailing message operand is not a decision context.
func pyAssertCondition(parent *sitter.Node) *sitter.Node {
	for i := 0; i < int(parent.ChildCount()); i++ {
		if child := parent.Child(i); child.IsNamed() {
			return child
		}
	}
	return nil
}

var goGrammar = &grammar{
	decision: map[string]conditionFunc{
		"if_statement":  conditionField,
		"for_statement": goForCondition,
		"for_clause":    conditionField,
	},
	blocked: map[string]bool{
		"var_spec":              true,
		"const_spec":            true,
		"short_var_declaration": true,
		"composite_literal":     true,
		"literal_value":         true,
	},
	operatorParents: map[string]bool{
		"binary_expression": true,
	},
}

var jsGrammar = &grammar{
	decision: map[string]conditionFunc{
		"if_statement":       conditionField,
		"while_statement":    conditionField,
		"do_statement":       conditionField,
		"for_statement":      conditionField,
		"ternary_expression": conditionField,
	},
	blocked: map[string]bool{
		"variable_declarator": true,
		"assignment_pattern":  true,
		"field_definition":    true,
		"object":              true,
		"array":               true,
		"new_expression":      true,
		"decorator":           true,
	},
	operatorParents: map[string]bool{
		"binary_expression": true,
	},
}

// tsGrammar covers TypeScript and TSX; the extra blocked types are
// class fields, parameter defaults, and enum member initializers.
var tsGrammar = &grammar{
	decision: map[string]conditionFunc{
		"if_statement":       conditionField,
		"while_statement":    conditionField,
		"do_statement":       conditionField,
		"for_statement":      conditionField,
		"ternary_expression": conditionField,
	},
	blocked: map[string]bool{
		"variable_declarator":     true,
		"assignment_pattern":      true,
		"field_definition":        true,
		"public_field_definition": true,
		"required_parameter":      true,
		"optional_parameter":      true,
		"enum_assignment":         true,
		"object":                  true,
		"array":                   true,
		"new_expression":          true,
		"decorator":               true,
	},
	operatorParents: map[string]bool{
		"binary_expression": true,
	},
}

var pyGrammar = &grammar{
	decision: map[string]conditionFunc{
		"if_statement":           conditionField,
		"elif_clause":            conditionField,
		"while_statement":        conditionField,
		"conditional_expression": pyTernaryCondition,
		"assert_statement":       pyAssertCondition,
	},
	blocked: map[string]bool{
		"decorator":               true,
		"default_parameter":       true,
		"typed_default_parameter": true,
		"assignment":              true,
		"keyword_argument":        true,
	},
	operatorParents: map[string]bool{
		"comparison_operator": true,
		"boolean_operator":    true,
	},
}

// grammarFor returns the table for a language, or nil when the
// language has no mutation support.
func grammarFor(lang parser.Language) *grammar {
	switch lang {
	case parser.LanguageGo:
		return goGrammar
	case parser.LanguageJavaScript:
		return jsGrammar
	case parser.LanguageTypeScript, parser.LanguageTSX:
		return tsGrammar
	case parser.LanguagePython:
		return pyGrammar
	default:
		return nil
	}
}

// boolLiteralTypes are the tree-sitter node types of boolean literals.
// Python names its rules "true" and "false" too; the source text keeps
// its own casing.
var boolLiteralTypes = map[string]bool{
	"true":  true,
	"false": true,
}

// flipBool swaps a boolean literal, preserving the language's casing.
func flipBool(text string) (string, bool) {
	switch text {
	case "true":
		return "false", true
	case "false":
		return "true", true
	case "True":
		return "False", true
	case "False":
		return "True", true
	default:
		return "", false
	}
}

// Operator swap tables. Equality swaps run under every profile;
// connective and boundary swaps are strict-only.
var (
	equalityOps = map[string]string{
		"==":  "!=",
		"!=":  "==",
		"===": "!==",
		"!==": "===",
	}

	connectiveOps = map[string]string{
		"&&":  "||",
		"||":  "&&",
		"and": "or",
		"or":  "and",
	}

	boundaryOps = map[string]string{
		">=": ">",
		">":  ">=",
		"<=": "<",
		"<":  "<=",
	}
)

// replacementFor maps an operator token to its swap under the given
// profile. The bool result is false for tokens outside the profile's
// operator set.
func replacementFor(op string, profile Profile) (string, Kind, bool) {
	if repl, ok := equalityOps[op]; ok {
		return repl, KindEquality, true
	}
	if profile == ProfileStrict {
		if repl, ok := connectiveOps[op]; ok {
			return repl, KindConnective, true
		}
		if repl, ok := boundaryOps[op]; ok {
			return repl, KindBoundary, true
		}
	}
	return "", "", false
}
