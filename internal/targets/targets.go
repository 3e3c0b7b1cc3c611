// Package targets parses the gate's input lists: the mutation targets
// and the per-line exclusions. Both formats are line-oriented with "|"
// separators, blank lines and #-comment lines skipped.
package targets

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Target pairs a source file with the test command that guards it.
type Target struct {
	SourceFile  string
	TestCommand string
}

// Exclude suppresses mutation at one line of one file.
type Exclude struct {
	SourceFile string
	Line       int
	Reason     string
}

// ExcludeSet answers (file, line) membership lookups.
type ExcludeSet struct {
	entries map[string]Exclude
}

// NewExcludeSet builds a set from parsed entries. Duplicate (file,
// line) pairs keep the last entry's reason.
func NewExcludeSet(entries []Exclude) *ExcludeSet {
	s := &ExcludeSet{entries: make(map[string]Exclude, len(entries))}
	for _, e := range entries {
		s.entries[excludeKey(e.SourceFile, e.Line)] = e
	}
	return s
}

// Lookup returns the exclusion covering the given position, if any.
func (s *ExcludeSet) Lookup(file string, line int) (Exclude, bool) {
	e, ok := s.entries[excludeKey(file, line)]
	return e, ok
}

// Len reports the number of exclusions.
func (s *ExcludeSet) Len() int {
	return len(s.entries)
}

func excludeKey(file string, line int) string {
	return file + "|" + strconv.Itoa(line)
}

// LoadTargets reads a targets file, one source_file|test_command pair
// per line. Only the first separator splits, so test commands may
// contain shell pipes. An empty list is a configuration error.
func LoadTargets(path string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer f.Close()

	var out []Target
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s:%d: expected source_file|test_command", path, lineNo)
		}
		src := strings.TrimSpace(parts[0])
		cmd := strings.TrimSpace(parts[1])
		if src == "" || cmd == "" {
			return nil, fmt.Errorf("%s:%d: expected source_file|test_command", path, lineNo)
		}
		out = append(out, Target{SourceFile: src, TestCommand: cmd})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("targets file %s has no entries", path)
	}
	return out, nil
}

// LoadExcludes reads an exclusion file, one source_file|line|reason
// triple per line. An empty file yields an empty set.
func LoadExcludes(path string) (*ExcludeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excludes file: %w", err)
	}
	defer f.Close()

	var entries []Exclude
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%s:%d: expected source_file|line|reason", path, lineNo)
		}
		src := strings.TrimSpace(parts[0])
		num, convErr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if src == "" || convErr != nil || num <= 0 {
			return nil, fmt.Errorf("%s:%d: expected source_file|line|reason with a positive line number", path, lineNo)
		}
		entries = append(entries, Exclude{
			SourceFile: src,
			Line:       num,
			Reason:     strings.TrimSpace(parts[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read excludes file: %w", err)
	}
	return NewExcludeSet(entries), nil
}
