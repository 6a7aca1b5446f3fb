package cpp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileResolverSearchesLocalThenSystemPaths(t *testing.T) {
	dir := t.TempDir()
	localDir := filepath.Join(dir, "local")
	sysDir := filepath.Join(dir, "sys")
	os.MkdirAll(localDir, 0755)
	os.MkdirAll(sysDir, 0755)
	os.WriteFile(filepath.Join(localDir, "a.h"), []byte("from local"), 0644)
	os.WriteFile(filepath.Join(sysDir, "b.h"), []byte("from sys"), 0644)

	r := NewFileResolver([]string{localDir}, []string{sysDir})

	data, _, ok := r.Open(IncludeLocal, "a.h", "")
	if !ok || data != "from local" {
		t.Fatalf("Open(a.h) = %q, %v", data, ok)
	}

	// A system include never searches LocalPaths.
	if _, _, ok := r.Open(IncludeSystem, "a.h", ""); ok {
		t.Fatal("a system #include must not find a file only reachable via LocalPaths")
	}
	data, _, ok = r.Open(IncludeSystem, "b.h", "")
	if !ok || data != "from sys" {
		t.Fatalf("Open(b.h) = %q, %v", data, ok)
	}
}

func TestFileResolverSearchesParentDirFirst(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "near.h"), []byte("near"), 0644)
	r := NewFileResolver(nil, nil)
	data, _, ok := r.Open(IncludeLocal, "near.h", filepath.Join(dir, "main.c"))
	if !ok || data != "near" {
		t.Fatalf("Open = %q, %v, want the file next to the including source", data, ok)
	}
}

func TestFileResolverGlobExpandsLocalPaths(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"vendor/a/include", "vendor/b/include"} {
		os.MkdirAll(filepath.Join(dir, sub), 0755)
	}
	os.WriteFile(filepath.Join(dir, "vendor/b/include/found.h"), []byte("found"), 0644)

	r := NewFileResolver([]string{filepath.Join(dir, "vendor/*/include")}, nil)
	data, _, ok := r.Open(IncludeLocal, "found.h", "")
	if !ok || data != "found" {
		t.Fatalf("Open via glob = %q, %v", data, ok)
	}
}

func TestFileResolverMarkOnceShortCircuits(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "guard.h"), []byte("body"), 0644)
	r := NewFileResolver([]string{dir}, nil)

	data, _, ok := r.Open(IncludeLocal, "guard.h", "")
	if !ok || data != "body" {
		t.Fatalf("first Open = %q, %v", data, ok)
	}
	r.MarkOnce("guard.h")
	data, _, ok = r.Open(IncludeLocal, "guard.h", "")
	if !ok || data != "" {
		t.Fatalf("Open after MarkOnce = %q, %v, want empty body and ok=true", data, ok)
	}
}

func TestFileResolverMissingFileFails(t *testing.T) {
	r := NewFileResolver(nil, nil)
	if _, _, ok := r.Open(IncludeLocal, "nope.h", ""); ok {
		t.Fatal("Open should fail when no search directory has the file")
	}
}
