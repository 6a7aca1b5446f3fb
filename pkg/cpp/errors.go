package cpp

import "fmt"

// PreprocessorError reports a user #error directive (spec.md §4.5).
// Malformed directives are reported as plain formatted errors instead.
type PreprocessorError struct {
	File    string
	Line    int
	Message string
}

func (e *PreprocessorError) Error() string {
	return fmt.Sprintf("%s:%d: #error %s", e.File, e.Line, e.Message)
}

// IncludeError reports a failed #include resolution: the callback
// returned ok=false.
type IncludeError struct {
	File   string
	Line   int
	Target string
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("%s:%d: cannot open include file %q", e.File, e.Line, e.Target)
}

// CircularIncludeError reports an include chain deeper than
// maxIncludeDepth, almost always a self-referential #include cycle.
type CircularIncludeError struct {
	File   string
	Line   int
	Target string
}

func (e *CircularIncludeError) Error() string {
	return fmt.Sprintf("%s:%d: #include %q exceeds maximum include depth of %d (likely circular)", e.File, e.Line, e.Target, maxIncludeDepth)
}
