package mutation

import "testing"

func TestDefaultClassifier(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name   string
		output string
		want   FailureKind
	}{
		{"go build failure", "FAIL\texample.com/pkg [build failed]\n", FailureCompile},
		{"go syntax error", "./app.go:12:4: syntax error: unexpected ==\n", FailureCompile},
		{"go undefined", "./app.go:9:2: undefined: helper\n", FailureCompile},
		{"node syntax error", "SyntaxError: Unexpected token '!=='\n    at Module._compile\n", FailureCompile},
		{"tsc diagnostic", "src/gate.ts(14,9): error TS2367: This comparison appears to be unintentional.\n", FailureCompile},
		{"python syntax error", `  File "app.py", line 3` + "\nSyntaxError: invalid syntax\n", FailureCompile},
		{"python indentation", "IndentationError: unexpected indent\n", FailureCompile},
		{"python missing module", "ModuleNotFoundError: No module named 'requestz'\n", FailureCompile},
		{"assertion failure", "--- FAIL: TestClamp (0.00s)\n    clamp_test.go:18: clamp(5) = 4, want 5\n", FailureSemantic},
		{"pytest assertion", "E       assert 4 == 5\n", FailureSemantic},
		{"empty output", "", FailureSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.output); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewRegexClassifier_CustomSignatures(t *testing.T) {
	c := NewRegexClassifier(`error\[E\d+\]`)

	if got := c.Classify("error[E0308]: mismatched types"); got != FailureCompile {
		t.Errorf("Classify() = %s, want %s", got, FailureCompile)
	}
	if got := c.Classify("test failed: assertion"); got != FailureSemantic {
		t.Errorf("Classify() = %s, want %s", got, FailureSemantic)
	}
}
