package cpp

import "fmt"

// CondKind is the directive that produced a Conditional record.
type CondKind int

const (
	CondIf CondKind = iota
	CondIfdef
	CondIfndef
	CondElif
	CondElse
)

// Conditional is one level of the per-source conditional stack
// (spec.md §3). Skipping already folds in ancestor skip state, so
// callers only ever need to read the top-of-stack's Skipping field.
type Conditional struct {
	Kind      CondKind
	StartLine int
	Skipping  bool
	Chosen    bool
	Parent    *Conditional

	anyChosen bool // true once some branch in this chain has been chosen
}

// condStack is the LIFO of open #if/#ifdef/#ifndef chains for one
// IncludeState. top is nil when no conditional is open.
type condStack struct {
	top *Conditional
}

func (s *condStack) isSkipping() bool {
	return s.top != nil && s.top.Skipping
}

func (s *condStack) depth() int {
	n := 0
	for c := s.top; c != nil; c = c.Parent {
		n++
	}
	return n
}

// push opens a new conditional level. result is ignored (forced to
// false/skipping) when an ancestor level is already skipping.
func (s *condStack) push(pool *pool[Conditional], kind CondKind, line int, result bool) {
	parentSkipping := s.isSkipping()
	c := pool.get()
	c.Kind = kind
	c.StartLine = line
	c.Parent = s.top
	if parentSkipping {
		c.Chosen = false
		c.anyChosen = false
		c.Skipping = true
	} else {
		c.Chosen = result
		c.anyChosen = result
		c.Skipping = !result
	}
	s.top = c
}

// elif updates the current chain for a #elif branch.
func (s *condStack) elif(line int, result bool) error {
	c := s.top
	if c == nil {
		return fmt.Errorf("#elif without matching #if")
	}
	if c.Kind == CondElse {
		return fmt.Errorf("#elif after #else")
	}
	ancestorSkipping := c.Parent != nil && c.Parent.Skipping
	c.Kind = CondElif
	c.StartLine = line
	if ancestorSkipping || c.anyChosen {
		c.Chosen = false
		c.Skipping = true
		return nil
	}
	c.Chosen = result
	if result {
		c.anyChosen = true
	}
	c.Skipping = !result
	return nil
}

// els updates the current chain for a #else branch.
func (s *condStack) els(line int) error {
	c := s.top
	if c == nil {
		return fmt.Errorf("#else without matching #if")
	}
	if c.Kind == CondElse {
		return fmt.Errorf("#else after #else")
	}
	ancestorSkipping := c.Parent != nil && c.Parent.Skipping
	c.Kind = CondElse
	c.StartLine = line
	if ancestorSkipping || c.anyChosen {
		c.Chosen = false
		c.Skipping = true
		return nil
	}
	c.Chosen = true
	c.anyChosen = true
	c.Skipping = false
	return nil
}

// endif closes the current level, pooling its record.
func (s *condStack) endif(pool *pool[Conditional]) error {
	if s.top == nil {
		return fmt.Errorf("#endif without matching #if")
	}
	old := s.top
	s.top = old.Parent
	pool.put(old)
	return nil
}

// drain releases any open conditionals, e.g. when a source is popped
// with unterminated #if directives.
func (s *condStack) drain(pool *pool[Conditional]) {
	for s.top != nil {
		old := s.top
		s.top = old.Parent
		pool.put(old)
	}
}
