package tui

import (
	"fmt"
	"path"
	"strings"

	"github.com/thiagokokada/diffy-go/internal/dirdiff"
)

// treeItem is one visible row of the file-tree pane.
type treeItem struct {
	path   string
	name   string
	status dirdiff.DiffStatus
	isDir  bool
	depth  int
}

// collectDirs gathers every directory path so the tree can start fully
// collapsed.
func collectDirs(node *dirdiff.TreeNode, out map[string]bool) {
	if node.IsDir && node.RelPath != "" {
		out[node.RelPath] = true
	}
	for _, child := range node.Children {
		collectDirs(child, out)
	}
}

// flattenTree turns the comparison tree into the visible row list, skipping
// the subtrees of collapsed directories. Children arrive pre-sorted from the
// builder, so row order is deterministic.
func flattenTree(node *dirdiff.TreeNode, depth int, collapsed map[string]bool) []treeItem {
	var items []treeItem
	if node.RelPath != "" {
		items = append(items, treeItem{
			path:   node.RelPath,
			name:   path.Base(node.RelPath),
			status: node.Status,
			isDir:  node.IsDir,
			depth:  depth,
		})
	}
	if node.IsDir && collapsed[node.RelPath] {
		return items
	}
	childDepth := depth
	if node.RelPath != "" {
		childDepth++
	}
	for _, child := range node.Children {
		items = append(items, flattenTree(child, childDepth, collapsed)...)
	}
	return items
}

// renderTreeRow formats one row: indent, status icon, expand marker, name.
func renderTreeRow(item treeItem, collapsed bool, selected bool, p colorPalette) string {
	indent := strings.Repeat("  ", item.depth)
	marker := "  "
	if item.isDir {
		if collapsed {
			marker = "▶ "
		} else {
			marker = "▼ "
		}
	}
	name := item.name
	if item.isDir {
		name += "/"
	}
	style := p.statusStyle(item.status)
	row := fmt.Sprintf("%s%s %s%s", indent, style.Render(item.status.Icon()), p.Dim.Render(marker), style.Render(name))
	if selected {
		return p.Selected.Render(fmt.Sprintf("%s%s %s%s", indent, item.status.Icon(), marker, name))
	}
	return row
}

// summaryLine renders the aggregate counts shown under the tree.
func summaryLine(result *dirdiff.DiffResult, p colorPalette) string {
	if result == nil {
		return ""
	}
	return fmt.Sprintf("%d files  %s %s %s",
		result.TotalFiles,
		p.Added.Render(fmt.Sprintf("+%d", result.AddedCount)),
		p.Removed.Render(fmt.Sprintf("-%d", result.RemovedCount)),
		p.Modified.Render(fmt.Sprintf("~%d", result.ModifiedCount)),
	)
}
