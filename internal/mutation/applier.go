package mutation

// Apply produces a mutated copy of the original content. It
// revalidates that the candidate's span still holds the expected text;
// a false result means the file drifted since collection and the
// mutant must be skipped, leaving the original untouched.
func Apply(original []byte, c Candidate) ([]byte, bool) {
	if c.ByteOffset < 0 || c.ByteEnd > len(original) || c.ByteOffset >= c.ByteEnd {
		return nil, false
	}
	if string(original[c.ByteOffset:c.ByteEnd]) != c.OriginalText {
		return nil, false
	}

	mutated := make([]byte, 0, len(original)+len(c.ReplacementText)-len(c.OriginalText))
	mutated = append(mutated, original[:c.ByteOffset]...)
	mutated = append(mutated, c.ReplacementText...)
	mutated = append(mutated, original[c.ByteEnd:]...)
	return mutated, true
}
