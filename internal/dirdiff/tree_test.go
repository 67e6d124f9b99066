package dirdiff

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func collectFiles(node *TreeNode, out map[string]DiffStatus) {
	if !node.IsDir {
		out[node.RelPath] = node.Status
	}
	for _, child := range node.Children {
		collectFiles(child, out)
	}
}

func TestAnalyzeIdenticalTrees(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	for _, root := range []string{left, right} {
		writeFile(t, root, "a.txt", "hello\n")
		writeFile(t, root, "sub/b.txt", "world\n")
		writeFile(t, root, "sub/deep/c.txt", "deep\n")
	}

	result, err := New(left, right).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.TotalFiles != 3 {
		t.Fatalf("expected 3 files, got %d", result.TotalFiles)
	}
	if result.AddedCount != 0 || result.RemovedCount != 0 || result.ModifiedCount != 0 {
		t.Fatalf("expected no changes, got %+v", result)
	}
	files := map[string]DiffStatus{}
	collectFiles(result.Tree, files)
	for rel, status := range files {
		if status != Unchanged {
			t.Fatalf("%s: expected Unchanged, got %s", rel, status)
		}
	}
}

func TestAnalyzeClassification(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, left, "removed.txt", "gone\n")
	writeFile(t, left, "same.txt", "same\n")
	writeFile(t, right, "same.txt", "same\n")
	writeFile(t, left, "changed.txt", "old\n")
	writeFile(t, right, "changed.txt", "new\n")
	writeFile(t, right, "added.txt", "fresh\n")

	result, err := New(left, right).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	files := map[string]DiffStatus{}
	collectFiles(result.Tree, files)

	want := map[string]DiffStatus{
		"removed.txt": Removed,
		"same.txt":    Unchanged,
		"changed.txt": Modified,
		"added.txt":   Added,
	}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("unexpected statuses:\ngot  %v\nwant %v", files, want)
	}
	if result.AddedCount != 1 || result.RemovedCount != 1 || result.ModifiedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	unchanged := result.TotalFiles - result.AddedCount - result.RemovedCount - result.ModifiedCount
	if unchanged != 1 {
		t.Fatalf("count consistency violated: %+v", result)
	}
}

func TestAnalyzeChildOrdering(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	// Names chosen so a naive lexicographic sort would put Z.txt before the
	// directories.
	for _, root := range []string{left, right} {
		writeFile(t, root, "Z.txt", "z\n")
		writeFile(t, root, "a/one.txt", "1\n")
		writeFile(t, root, "b.txt", "b\n")
		writeFile(t, root, "m/two.txt", "2\n")
	}

	result, err := New(left, right).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var names []string
	for _, child := range result.Tree.Children {
		names = append(names, filepath.Base(child.RelPath))
	}
	want := []string{"a", "m", "Z.txt", "b.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected ordering:\ngot  %v\nwant %v", names, want)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, left, "x/a.txt", "a\n")
	writeFile(t, left, "y.txt", "y\n")
	writeFile(t, right, "x/a.txt", "a2\n")
	writeFile(t, right, "z.txt", "z\n")

	core := New(left, right)
	first, err := core.Analyze()
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := core.Analyze()
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Analyze not deterministic:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestAnalyzeOneRootMissing(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	writeFile(t, left, "only.txt", "left\n")

	result, err := New(left, filepath.Join(t.TempDir(), "missing")).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	files := map[string]DiffStatus{}
	collectFiles(result.Tree, files)
	if files["only.txt"] != Removed {
		t.Fatalf("expected whole-side Removed, got %v", files)
	}
}

func TestAnalyzeBothRootsMissing(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	_, err := New(filepath.Join(base, "nope"), filepath.Join(base, "also-nope")).Analyze()
	if !errors.Is(err, ErrNoRoots) {
		t.Fatalf("expected ErrNoRoots, got %v", err)
	}
}

func TestAnalyzeTypeMismatch(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, left, "thing", "i am a file\n")
	writeFile(t, right, "thing/nested.txt", "i am inside a directory\n")

	result, err := New(left, right).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var mismatch *TreeNode
	for _, child := range result.Tree.Children {
		if filepath.Base(child.RelPath) == "thing" {
			mismatch = child
		}
	}
	if mismatch == nil {
		t.Fatalf("mismatch node missing: %+v", result.Tree)
	}
	if mismatch.Status != Modified {
		t.Fatalf("expected Modified for type mismatch, got %s", mismatch.Status)
	}
	if !mismatch.IsDir {
		t.Fatalf("mismatch node should stay a directory so children attach")
	}
	if len(mismatch.Children) != 1 || mismatch.Children[0].Status != Added {
		t.Fatalf("expected nested file to classify as Added: %+v", mismatch.Children)
	}
}

func TestAnalyzeGitignore(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, left, ".gitignore", "*.log\n")
	writeFile(t, right, ".gitignore", "*.log\n")
	writeFile(t, left, "keep.txt", "keep\n")
	writeFile(t, right, "keep.txt", "keep\n")
	writeFile(t, left, "debug.log", "noise\n")

	result, err := New(left, right).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	files := map[string]DiffStatus{}
	collectFiles(result.Tree, files)
	if _, ok := files["debug.log"]; ok {
		t.Fatalf("ignored file leaked into tree: %v", files)
	}

	core := New(left, right)
	core.IncludeIgnored = true
	result, err = core.Analyze()
	if err != nil {
		t.Fatalf("Analyze include-ignored: %v", err)
	}
	files = map[string]DiffStatus{}
	collectFiles(result.Tree, files)
	if files["debug.log"] != Removed {
		t.Fatalf("include-ignored should surface debug.log as Removed: %v", files)
	}
}

func TestAnalyzeExcludeGlobs(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, left, "src/main.go", "package main\n")
	writeFile(t, right, "src/main.go", "package main\n")
	writeFile(t, left, "src/main_test.go", "package main\n")
	writeFile(t, right, "node_modules/dep/index.js", "x\n")

	core := New(left, right)
	core.Excludes = []string{"*_test.go", "node_modules"}
	result, err := core.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	files := map[string]DiffStatus{}
	collectFiles(result.Tree, files)
	if len(files) != 1 {
		t.Fatalf("expected only src/main.go to survive, got %v", files)
	}
	if files["src/main.go"] != Unchanged {
		t.Fatalf("unexpected status: %v", files)
	}
}

func TestAnalyzeFilePair(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	leftFile := filepath.Join(base, "left.txt")
	rightFile := filepath.Join(base, "right.txt")
	if err := os.WriteFile(leftFile, []byte("one\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(rightFile, []byte("two\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := New(leftFile, rightFile).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.TotalFiles != 1 || result.ModifiedCount != 1 {
		t.Fatalf("expected single modified file, got %+v", result)
	}
	if len(result.Tree.Children) != 1 || result.Tree.Children[0].RelPath != "left.txt" {
		t.Fatalf("unexpected tree: %+v", result.Tree)
	}
}

func TestAnalyzeDirectoriesNeverModified(t *testing.T) {
	t.Parallel()

	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, left, "dir/a.txt", "old\n")
	writeFile(t, right, "dir/a.txt", "new\n")

	result, err := New(left, right).Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	dir := result.Tree.Children[0]
	if !dir.IsDir || dir.Status != Unchanged {
		t.Fatalf("directory status should reflect existence only: %+v", dir)
	}
	if dir.Size != nil {
		t.Fatalf("directories carry no size: %+v", dir)
	}
}
