package dirdiff

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// pathEntry is the transient classification record for one relative path.
// Entries only live for the duration of a single build; the assembled tree
// owns everything afterwards.
type pathEntry struct {
	rel         string
	existsLeft  bool
	existsRight bool
	isDir       bool
	size        *int64
	status      DiffStatus
}

type treeBuilder struct {
	left           string
	right          string
	includeIgnored bool
	excludes       []string
}

// build walks both roots, classifies the union of their relative paths and
// assembles the ordered tree. Discovery runs one goroutine per root and
// classification fans out across CPUs; ordering is imposed during assembly,
// so scheduling never changes the result.
func (b *treeBuilder) build() (*TreeNode, error) {
	leftInfo, leftErr := os.Stat(b.left)
	rightInfo, rightErr := os.Stat(b.right)
	if leftErr != nil && rightErr != nil {
		return nil, fmt.Errorf("%w: %s, %s", ErrNoRoots, b.left, b.right)
	}

	// Two regular files compare directly: the tree is the pair itself.
	leftIsFile := leftErr == nil && leftInfo.Mode().IsRegular()
	rightIsFile := rightErr == nil && rightInfo.Mode().IsRegular()
	if leftIsFile || rightIsFile {
		return b.buildFilePair(leftErr == nil, rightErr == nil)
	}

	var leftSet, rightSet map[string]struct{}
	var g errgroup.Group
	g.Go(func() error {
		var err error
		leftSet, err = b.discover(b.left)
		return err
	})
	g.Go(func() error {
		var err error
		rightSet, err = b.discover(b.right)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	union := make([]string, 0, len(leftSet)+len(rightSet))
	for rel := range leftSet {
		union = append(union, rel)
	}
	for rel := range rightSet {
		if _, ok := leftSet[rel]; !ok {
			union = append(union, rel)
		}
	}
	sort.Strings(union)

	// Classification is independent per path; workers write into their own
	// slot, so no locking is needed.
	entries := make([]pathEntry, len(union))
	var cg errgroup.Group
	cg.SetLimit(runtime.GOMAXPROCS(0))
	for i, rel := range union {
		cg.Go(func() error {
			entries[i] = b.classify(rel)
			return nil
		})
	}
	if err := cg.Wait(); err != nil {
		return nil, err
	}

	return assemble(entries), nil
}

// buildFilePair handles the case where the roots are files rather than
// directories. The single child is named after whichever side exists.
func (b *treeBuilder) buildFilePair(existsLeft, existsRight bool) (*TreeNode, error) {
	name := filepath.Base(b.left)
	if !existsLeft {
		name = filepath.Base(b.right)
	}
	entry := pathEntry{rel: name, existsLeft: existsLeft, existsRight: existsRight}
	switch {
	case existsLeft && existsRight:
		equal, err := filesEqual(b.left, b.right)
		if err != nil {
			slog.Debug("equality check failed", slog.String("path", name), slog.Any("error", err))
			equal = false
		}
		if equal {
			entry.status = Unchanged
		} else {
			entry.status = Modified
		}
	case existsLeft:
		entry.status = Removed
	default:
		entry.status = Added
	}
	side := b.left
	if !existsLeft {
		side = b.right
	}
	if info, err := os.Stat(side); err == nil {
		size := info.Size()
		entry.size = &size
	}
	return assemble([]pathEntry{entry}), nil
}

// discover enumerates every path under root, honoring ignore rules. A
// missing root yields an empty set; an unreadable root is a hard error.
func (b *treeBuilder) discover(root string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	matcher := newIgnoreMatcher(root, b.includeIgnored, b.excludes)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return fmt.Errorf("read root %s: %w", root, err)
			}
			// Unreadable subpaths are treated as absent on this side.
			slog.Debug("skipping unreadable path", slog.String("path", p), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() && d.Name() == ".git" {
			return fs.SkipDir
		}
		if matcher.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		set[rel] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// classify decides existence, type, size and diff status for one relative
// path. Stat failures are absorbed: the path is treated as absent on the
// failing side, and an unreadable pair degrades to Modified.
func (b *treeBuilder) classify(rel string) pathEntry {
	entry := pathEntry{rel: rel}
	leftPath := filepath.Join(b.left, filepath.FromSlash(rel))
	rightPath := filepath.Join(b.right, filepath.FromSlash(rel))

	leftInfo, err := os.Stat(leftPath)
	entry.existsLeft = err == nil
	rightInfo, err := os.Stat(rightPath)
	entry.existsRight = err == nil

	leftDir := entry.existsLeft && leftInfo.IsDir()
	rightDir := entry.existsRight && rightInfo.IsDir()
	// A dir/file type mismatch keeps the node a directory so that children
	// discovered on the directory side still have somewhere to attach.
	entry.isDir = leftDir || rightDir

	if !entry.isDir {
		switch {
		case entry.existsLeft:
			size := leftInfo.Size()
			entry.size = &size
		case entry.existsRight:
			size := rightInfo.Size()
			entry.size = &size
		}
	}

	switch {
	case entry.existsLeft && entry.existsRight:
		if leftDir != rightDir {
			entry.status = Modified
			return entry
		}
		if entry.isDir {
			entry.status = Unchanged
			return entry
		}
		equal, err := filesEqual(leftPath, rightPath)
		if err != nil {
			slog.Debug("equality check failed", slog.String("path", rel), slog.Any("error", err))
			equal = false
		}
		if equal {
			entry.status = Unchanged
		} else {
			entry.status = Modified
		}
	case entry.existsLeft:
		entry.status = Removed
	case entry.existsRight:
		entry.status = Added
	default:
		entry.status = Unchanged
	}
	return entry
}

// assemble turns the classified set into the ownership tree. It is a pure
// function of the entries: paths attach to their parents, missing parent
// directories are synthesized, and every child list is sorted
// directories-first then by name.
func assemble(entries []pathEntry) *TreeNode {
	root := &TreeNode{IsDir: true, Status: Unchanged}
	nodes := map[string]*TreeNode{"": root}

	var ensureDir func(rel string) *TreeNode
	ensureDir = func(rel string) *TreeNode {
		if node, ok := nodes[rel]; ok {
			return node
		}
		node := &TreeNode{RelPath: rel, IsDir: true, Status: Unchanged}
		nodes[rel] = node
		parent := ensureDir(parentPath(rel))
		parent.Children = append(parent.Children, node)
		return node
	}

	for _, entry := range entries {
		node, ok := nodes[entry.rel]
		if !ok {
			node = &TreeNode{RelPath: entry.rel}
			nodes[entry.rel] = node
			parent := ensureDir(parentPath(entry.rel))
			parent.Children = append(parent.Children, node)
		}
		node.IsDir = entry.isDir
		node.Status = entry.status
		node.Size = entry.size
	}

	sortChildren(root)
	return root
}

func parentPath(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func sortChildren(node *TreeNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return path.Base(a.RelPath) < path.Base(b.RelPath)
	})
	for _, child := range node.Children {
		sortChildren(child)
	}
}
