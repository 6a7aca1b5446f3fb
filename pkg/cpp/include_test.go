package cpp

import "testing"

func TestIncludeStackPushPopOrdering(t *testing.T) {
	var frames pool[IncludeState]
	var conds pool[Conditional]
	fnames := NewStringCache()

	var stack includeStack
	if !stack.empty() {
		t.Fatal("new stack should be empty")
	}
	outer := stack.pushSource(&frames, fnames, "outer.c", "outer body", 1, nil)
	if outer.filename != "outer.c" {
		t.Fatalf("outer.filename = %q", outer.filename)
	}

	closed := false
	stack.pushSource(&frames, fnames, "inner.h", "inner body", 1, func() { closed = true })
	if stack.top.parent != outer {
		t.Fatal("inner frame should chain to outer as parent")
	}

	if err := stack.popSource(&conds, &frames); err != nil {
		t.Fatalf("popSource: %v", err)
	}
	if !closed {
		t.Fatal("popSource should invoke the frame's closer exactly once")
	}
	if stack.top != outer {
		t.Fatal("popping the inner frame should expose outer again")
	}

	if err := stack.popSource(&conds, &frames); err != nil {
		t.Fatalf("popSource: %v", err)
	}
	if !stack.empty() {
		t.Fatal("stack should be empty after popping both frames")
	}
}

func TestIncludeStackPopReportsUnterminatedConditional(t *testing.T) {
	var frames pool[IncludeState]
	var conds pool[Conditional]
	fnames := NewStringCache()

	var stack includeStack
	st := stack.pushSource(&frames, fnames, "f.c", "#if 1\nbody", 1, nil)
	st.cond.push(&conds, CondIf, 1, true)

	if err := stack.popSource(&conds, &frames); err == nil {
		t.Fatal("expected an unterminated #if to surface as an error from popSource")
	}
}

func TestIncludeCallbackFuncAdapter(t *testing.T) {
	var gotKind IncludeKind
	var gotName, gotParent string
	cb := IncludeCallbackFunc(func(kind IncludeKind, filename, parentFile string) (string, func(), bool) {
		gotKind, gotName, gotParent = kind, filename, parentFile
		return "body", nil, true
	})
	data, _, ok := cb.Open(IncludeSystem, "stdio.h", "main.c")
	if !ok || data != "body" {
		t.Fatalf("Open = %q, %v", data, ok)
	}
	if gotKind != IncludeSystem || gotName != "stdio.h" || gotParent != "main.c" {
		t.Fatalf("adapter did not forward arguments: %v %q %q", gotKind, gotName, gotParent)
	}
}
