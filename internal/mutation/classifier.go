package mutation

import "regexp"

// FailureKind is the sub-classification of a killed mutant's test
// output. The distinction is informational: a compile-error kill still
// counts as killed.
type FailureKind string

const (
	// FailureSemantic means an assertion or runtime check caught the mutant.
	FailureSemantic FailureKind = "semantic"

	// FailureCompile means the mutant never ran because the build broke.
	FailureCompile FailureKind = "compile-error"
)

// FailureClassifier inspects a killed mutant's combined output and
// decides what kind of failure killed it.
type FailureClassifier interface {
	Classify(output string) FailureKind
}

// RegexClassifier matches compiler diagnostic signatures against test
// output. Anything unmatched is treated as a semantic kill.
type RegexClassifier struct {
	patterns []*regexp.Regexp
}

// NewRegexClassifier compiles the given signature patterns. Invalid
// patterns panic, which is acceptable for the fixed built-in set.
func NewRegexClassifier(patterns ...string) *RegexClassifier {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return &RegexClassifier{patterns: compiled}
}

// DefaultClassifier recognizes the compiler and interpreter
// diagnostics of the supported toolchains.
func DefaultClassifier() *RegexClassifier {
	return NewRegexClassifier(
		// Go
		`\[build failed\]`,
		`syntax error:`,
		`undefined: `,
		`cannot use .+ as `,
		// JavaScript and TypeScript
		`SyntaxError:`,
		`error TS\d+:`,
		// Python
		`IndentationError:`,
		`ModuleNotFoundError:`,
	)
}

func (c *RegexClassifier) Classify(output string) FailureKind {
	for _, re := range c.patterns {
		if re.MatchString(output) {
			return FailureCompile
		}
	}
	return FailureSemantic
}
