// Package dirdiff compares two directory trees (or two files) and exposes
// the result as an immutable classified tree plus on-demand per-file hunk
// diffs.
package dirdiff

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoRoots is returned by Analyze when neither comparison root exists.
var ErrNoRoots = errors.New("neither comparison root exists")

// parallelCountThreshold is the child count above which subtree stats are
// aggregated fork-join style instead of sequentially.
const parallelCountThreshold = 16

// Core holds the two comparison roots and the options for a run. The zero
// options compare honoring gitignore rules.
type Core struct {
	LeftPath  string
	RightPath string

	// IncludeIgnored disables gitignore handling during discovery.
	IncludeIgnored bool
	// Excludes are extra glob patterns to skip, applied on both sides.
	Excludes []string
}

// New returns a Core comparing left against right.
func New(left, right string) *Core {
	return &Core{LeftPath: left, RightPath: right}
}

// Analyze walks both roots and produces the classified tree with aggregate
// counts. Rebuilding always re-walks from scratch; the returned result is
// never mutated afterwards.
func (c *Core) Analyze() (*DiffResult, error) {
	start := time.Now()
	builder := &treeBuilder{
		left:           c.LeftPath,
		right:          c.RightPath,
		includeIgnored: c.IncludeIgnored,
		excludes:       c.Excludes,
	}
	tree, err := builder.build()
	if err != nil {
		return nil, err
	}
	counts := countStats(tree)
	slog.Debug("analysis complete",
		slog.Int("total_files", counts.total),
		slog.Int("added", counts.added),
		slog.Int("removed", counts.removed),
		slog.Int("modified", counts.modified),
		slog.Duration("elapsed", time.Since(start)),
	)
	return &DiffResult{
		LeftPath:      c.LeftPath,
		RightPath:     c.RightPath,
		Tree:          tree,
		TotalFiles:    counts.total,
		AddedCount:    counts.added,
		RemovedCount:  counts.removed,
		ModifiedCount: counts.modified,
	}, nil
}

// FileDiff reads both sides of one file and computes its hunks. When the
// roots are themselves regular files the relative path is ignored and the
// roots compare directly.
func (c *Core) FileDiff(rel string) (*FileDiff, error) {
	leftPath := c.sidePath(c.LeftPath, rel)
	rightPath := c.sidePath(c.RightPath, rel)

	leftContent, err := readSide(leftPath)
	if err != nil {
		return nil, err
	}
	rightContent, err := readSide(rightPath)
	if err != nil {
		return nil, err
	}

	diff := &FileDiff{LeftContent: leftContent, RightContent: rightContent}
	if leftContent == nil && rightContent == nil {
		return diff, nil
	}
	if (leftContent != nil && isBinary([]byte(*leftContent))) ||
		(rightContent != nil && isBinary([]byte(*rightContent))) {
		// Binary content has no meaningful line structure; leave it
		// unparsed rather than producing nonsense hunks.
		return &FileDiff{Binary: true}, nil
	}

	switch {
	case leftContent != nil && rightContent != nil:
		ops := diffOps(splitContentLines(*leftContent), splitContentLines(*rightContent))
		diff.Hunks = buildHunks(ops)
	case leftContent != nil:
		diff.Hunks = wholeFileHunk(splitContentLines(*leftContent), Deletion)
	default:
		diff.Hunks = wholeFileHunk(splitContentLines(*rightContent), Addition)
	}
	return diff, nil
}

func (c *Core) sidePath(root, rel string) string {
	if info, err := os.Stat(root); err == nil && info.Mode().IsRegular() {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// readSide returns nil for a missing file and the raw content otherwise.
func readSide(path string) (*string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)
	return &content, nil
}

type stats struct {
	total    int
	added    int
	removed  int
	modified int
}

func (s *stats) merge(other stats) {
	s.total += other.total
	s.added += other.added
	s.removed += other.removed
	s.modified += other.modified
}

// countStats rolls up file counts over the tree. Wide directories fan out
// into per-child goroutines joined into a results slice; small ones sum
// sequentially to keep scheduling overhead below the work itself.
func countStats(node *TreeNode) stats {
	var s stats
	if !node.IsDir {
		s.total = 1
		switch node.Status {
		case Added:
			s.added = 1
		case Removed:
			s.removed = 1
		case Modified:
			s.modified = 1
		}
	}
	if len(node.Children) >= parallelCountThreshold {
		parts := make([]stats, len(node.Children))
		var wg sync.WaitGroup
		for i, child := range node.Children {
			wg.Add(1)
			go func() {
				defer wg.Done()
				parts[i] = countStats(child)
			}()
		}
		wg.Wait()
		for _, part := range parts {
			s.merge(part)
		}
		return s
	}
	for _, child := range node.Children {
		s.merge(countStats(child))
	}
	return s
}
