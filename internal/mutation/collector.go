package mutation

import (
	"bytes"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mutgate-hq/mutgate/internal/parser"
)

// Collect discovers mutation candidates in a parsed source file:
// boolean literals and swappable operators that sit in a decision
// context. Results are ordered by ascending byte offset, so two runs
// over identical content produce identical candidates.
func Collect(src *parser.ParsedSource, profile Profile) []Candidate {
	g := grammarFor(src.Language)
	if g == nil || src.Tree == nil {
		return nil
	}

	var found []Candidate
	cursor := sitter.NewTreeCursor(src.Root())
	defer cursor.Close()

	visitAll(cursor, func(n *sitter.Node) {
		if cand, ok := candidateAt(n, g, src, profile); ok {
			found = append(found, cand)
		}
	})

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].ByteOffset != found[j].ByteOffset {
			return found[i].ByteOffset < found[j].ByteOffset
		}
		return found[i].ByteEnd < found[j].ByteEnd
	})
	return found
}

// visitAll walks every node in the tree. Operator tokens are anonymous
// nodes, so this uses a cursor rather than NamedChild iteration.
func visitAll(cursor *sitter.TreeCursor, fn func(*sitter.Node)) {
	for {
		fn(cursor.CurrentNode())
		if cursor.GoToFirstChild() {
			continue
		}
		for {
			if cursor.GoToNextSibling() {
				break
			}
			if !cursor.GoToParent() {
				return
			}
		}
	}
}

func candidateAt(n *sitter.Node, g *grammar, src *parser.ParsedSource, profile Profile) (Candidate, bool) {
	if n.IsNamed() {
		if !boolLiteralTypes[n.Type()] {
			return Candidate{}, false
		}
		original := n.Content(src.Source)
		replacement, ok := flipBool(original)
		if !ok {
			return Candidate{}, false
		}
		if !g.inDecisionContext(n) {
			return Candidate{}, false
		}
		return newCandidate(src, n, original, replacement, KindBoolLiteral)
	}

	parent := n.Parent()
	if parent == nil || !g.operatorParents[parent.Type()] {
		return Candidate{}, false
	}
	replacement, kind, ok := replacementFor(n.Type(), profile)
	if !ok {
		return Candidate{}, false
	}
	// the decision walk starts at the owning expression, not the token
	if !g.inDecisionContext(parent) {
		return Candidate{}, false
	}
	return newCandidate(src, n, n.Content(src.Source), replacement, kind)
}

// newCandidate builds a candidate and discards degenerate ones: a
// replacement equal to its original, or a span outside the source.
func newCandidate(src *parser.ParsedSource, n *sitter.Node, original, replacement string, kind Kind) (Candidate, bool) {
	start, end := int(n.StartByte()), int(n.EndByte())
	if replacement == original || start < 0 || end > len(src.Source) || start >= end {
		return Candidate{}, false
	}
	return Candidate{
		File:            src.Path,
		Line:            int(n.StartPoint().Row) + 1,
		Column:          int(n.StartPoint().Column) + 1,
		ByteOffset:      start,
		ByteEnd:         end,
		OriginalText:    original,
		ReplacementText: replacement,
		Kind:            kind,
		ContextSnippet:  snippetAt(src.Source, start),
	}, true
}

// snippetAt returns the trimmed source line containing the given byte
// offset, truncated for report readability.
func snippetAt(source []byte, offset int) string {
	if offset < 0 || offset > len(source) {
		return ""
	}
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	end := bytes.IndexByte(source[offset:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += offset
	}
	line := strings.TrimSpace(string(source[start:end]))
	const maxSnippet = 120
	if len(line) > maxSnippet {
		line = line[:maxSnippet] + "..."
	}
	return line
}
