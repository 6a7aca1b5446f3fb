package cpp

import "fmt"

// IncludeKind distinguishes "local" includes from <system> includes
// in the Open callback contract (spec.md §6).
type IncludeKind int

const (
	IncludeLocal IncludeKind = iota
	IncludeSystem
)

// IncludeCallback resolves and opens #include targets. Open returns
// the backing data and an optional closer; the preprocessor guarantees
// exactly one call to closer per successful Open (spec.md §6).
type IncludeCallback interface {
	Open(kind IncludeKind, filename string, parentFile string) (data string, closer func(), ok bool)
}

// IncludeCallbackFunc adapts a function to IncludeCallback.
type IncludeCallbackFunc func(kind IncludeKind, filename string, parentFile string) (string, func(), bool)

// Open implements IncludeCallback.
func (f IncludeCallbackFunc) Open(kind IncludeKind, filename string, parentFile string) (string, func(), bool) {
	return f(kind, filename, parentFile)
}

// IncludeState is one open input source: the lexer cursor over its
// buffer, its own conditional stack, and pushback slot (spec.md §3/§4.3).
type IncludeState struct {
	filename string // borrowed from the filename cache
	buf      string
	pos      int
	line     int

	pushedBack        Token
	hasPushback       bool
	prevWasNewline    bool  // lexer BOL sentinel: true at start of source
	awaitingDirective bool  // '#' seen at BOL; next identifier may promote to PP_*

	cond condStack

	asmComments      bool
	reportWhitespace bool

	closer func()

	parent *IncludeState
}

// includeStack is the LIFO of currently-open input sources.
type includeStack struct {
	top *IncludeState
}

func (s *includeStack) empty() bool { return s.top == nil }

// pushSource allocates a new frame over src, interning filename (if
// non-empty) in fnames, and links it on top of the stack.
func (s *includeStack) pushSource(pool *pool[IncludeState], fnames *StringCache, filename, src string, startLine int, closer func()) *IncludeState {
	st := pool.get()
	if filename != "" {
		st.filename = fnames.Intern(filename)
	} else if s.top != nil {
		st.filename = s.top.filename
	}
	st.buf = src
	st.pos = 0
	st.line = startLine
	st.prevWasNewline = true
	st.closer = closer
	st.parent = s.top
	s.top = st
	return st
}

// popSource unlinks the top frame, invokes its closer exactly once if
// present, drains any lingering conditionals, and recycles the frame.
// Returns an error if conditionals were left open ("unterminated #if").
func (s *includeStack) popSource(condPool *pool[Conditional], framePool *pool[IncludeState]) error {
	st := s.top
	if st == nil {
		return nil
	}
	s.top = st.parent
	var err error
	if st.cond.top != nil {
		err = fmt.Errorf("%s: unterminated #if (opened at line %d)", st.filename, st.cond.top.StartLine)
	}
	st.cond.drain(condPool)
	if st.closer != nil {
		st.closer()
	}
	framePool.put(st)
	return err
}
