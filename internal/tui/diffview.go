package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/thiagokokada/diffy-go/internal/dirdiff"
)

type viewMode int

const (
	modeUnified viewMode = iota
	modeSideBySide
)

func (m viewMode) String() string {
	if m == modeSideBySide {
		return "side-by-side"
	}
	return "unified"
}

// renderUnified produces the unified-diff lines for one file: hunk headers
// followed by prefixed diff lines. When there are no hunks the file content
// (either side) is shown as-is.
func renderUnified(rel string, diff *dirdiff.FileDiff, p colorPalette, hl *highlighter) []string {
	if diff.Binary {
		return []string{p.Dim.Render("(binary files differ)")}
	}
	if len(diff.Hunks) == 0 {
		content := ""
		if diff.LeftContent != nil {
			content = *diff.LeftContent
		} else if diff.RightContent != nil {
			content = *diff.RightContent
		}
		if content == "" {
			return []string{p.Dim.Render("(no changes)")}
		}
		var out []string
		for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
			out = append(out, p.DiffCtx.Render(" "+hl.line(rel, line)))
		}
		return out
	}

	var out []string
	for _, hunk := range diff.Hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)
		out = append(out, p.HunkHeader.Render(header))
		for _, line := range hunk.Lines {
			switch line.Kind {
			case dirdiff.Addition:
				out = append(out, p.DiffAdd.Render("+"+line.Content))
			case dirdiff.Deletion:
				out = append(out, p.DiffDel.Render("-"+line.Content))
			default:
				out = append(out, p.DiffCtx.Render(" ")+hl.line(rel, line.Content))
			}
		}
	}
	return out
}

// renderSideBySide splits the pane in two and shows the raw contents of each
// side, padded to equal height.
func renderSideBySide(diff *dirdiff.FileDiff, p colorPalette, width int) []string {
	if diff.Binary {
		return []string{p.Dim.Render("(binary files differ)")}
	}
	half := width / 2
	if half < 8 {
		half = 8
	}
	left := sideLines(diff.LeftContent)
	right := sideLines(diff.RightContent)
	height := len(left)
	if len(right) > height {
		height = len(right)
	}

	out := make([]string, 0, height+1)
	out = append(out, p.Title.Render(padTo("Left (original)", half))+p.Title.Render("Right (modified)"))
	for i := 0; i < height; i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		out = append(out, padTo(truncateTo(l, half-1), half)+truncateTo(r, half-1))
	}
	return out
}

func sideLines(content *string) []string {
	if content == nil {
		return []string{"(file not found)"}
	}
	if *content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(*content, "\n"), "\n")
}

// padTo pads s with spaces up to the given printable width. Escape
// sequences do not count toward the width.
func padTo(s string, width int) string {
	gap := width - ansi.PrintableRuneWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// truncateTo cuts s down to the given printable width without splitting
// runes or escape sequences, so styled rows stay valid when clipped.
func truncateTo(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.String(s, uint(width))
}

// helpLines is the right-pane content when no file is selected.
func helpLines(keys keyMap, mode viewMode, p colorPalette) []string {
	bindings := []struct {
		help string
		desc string
	}{
		{keys.Up.Help().Key + "/" + keys.Down.Help().Key, "navigate file tree"},
		{keys.Open.Help().Key, keys.Open.Help().Desc},
		{keys.Collapse.Help().Key + "/" + keys.Expand.Help().Key, "collapse/expand directory"},
		{keys.Toggle.Help().Key, keys.Toggle.Help().Desc},
		{keys.Unified.Help().Key, keys.Unified.Help().Desc},
		{keys.SideBySide.Help().Key, keys.SideBySide.Help().Desc},
		{keys.ScrollDown.Help().Key, keys.ScrollDown.Help().Desc},
		{keys.ScrollUp.Help().Key, keys.ScrollUp.Help().Desc},
		{keys.Top.Help().Key, keys.Top.Help().Desc},
		{keys.Reload.Help().Key, keys.Reload.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	}
	out := []string{p.Title.Render("Keys"), ""}
	for _, b := range bindings {
		out = append(out, fmt.Sprintf("  %-12s %s", b.help, b.desc))
	}
	out = append(out, "", p.Dim.Render("mode: "+mode.String()))
	return out
}
