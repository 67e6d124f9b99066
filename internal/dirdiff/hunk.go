package dirdiff

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// contextLines is the number of unchanged lines kept on each side of a
	// hunk, matching conventional unified-diff output.
	contextLines = 3

	binarySniffLen = 8 * 1024
)

// lineOp is one line-aligned operation from the diff oracle.
type lineOp struct {
	tag  byte // 'e' equal, 'd' delete, 'i' insert
	text string
}

// diffOps aligns the two line sequences and flattens the matcher's opcodes
// into per-line operations. Replacements become the deleted lines followed by
// the inserted ones. Any oracle covering every input line exactly once in
// order would do here.
func diffOps(oldLines, newLines []string) []lineOp {
	matcher := difflib.NewMatcher(oldLines, newLines)
	var ops []lineOp
	for _, oc := range matcher.GetOpCodes() {
		switch oc.Tag {
		case 'e':
			for _, text := range oldLines[oc.I1:oc.I2] {
				ops = append(ops, lineOp{tag: 'e', text: text})
			}
		case 'd':
			for _, text := range oldLines[oc.I1:oc.I2] {
				ops = append(ops, lineOp{tag: 'd', text: text})
			}
		case 'i':
			for _, text := range newLines[oc.J1:oc.J2] {
				ops = append(ops, lineOp{tag: 'i', text: text})
			}
		case 'r':
			for _, text := range oldLines[oc.I1:oc.I2] {
				ops = append(ops, lineOp{tag: 'd', text: text})
			}
			for _, text := range newLines[oc.J1:oc.J2] {
				ops = append(ops, lineOp{tag: 'i', text: text})
			}
		}
	}
	return ops
}

// buildHunks folds the operation sequence into unified hunks. A rolling
// buffer holds up to contextLines of unattached equal lines; a hunk opens on
// the first change, absorbs the buffered context, and closes once its
// trailing context run reaches contextLines. Change runs separated by fewer
// equal lines than that share a hunk.
func buildHunks(ops []lineOp) []Hunk {
	var hunks []Hunk
	var open *Hunk
	var buffered []DiffLine
	oldNo, newNo := 1, 1

	openHunk := func() {
		open = &Hunk{OldStart: oldNo, NewStart: newNo}
		if len(buffered) > 0 {
			open.OldStart = *buffered[0].OldLine
			open.NewStart = *buffered[0].NewLine
			open.Lines = append(open.Lines, buffered...)
			buffered = buffered[:0]
		}
	}

	for _, op := range ops {
		switch op.tag {
		case 'e':
			line := DiffLine{Kind: Context, Content: op.text, OldLine: intRef(oldNo), NewLine: intRef(newNo)}
			if open != nil {
				open.Lines = append(open.Lines, line)
				if trailing := trailingContext(open.Lines); trailing >= contextLines {
					open.Lines = open.Lines[:len(open.Lines)-trailing+contextLines]
					hunks = append(hunks, *open)
					open = nil
					buffered = buffered[:0]
				}
			} else {
				buffered = append(buffered, line)
				if len(buffered) > contextLines {
					buffered = buffered[1:]
				}
			}
			oldNo++
			newNo++
		case 'd':
			if open == nil {
				openHunk()
			}
			open.Lines = append(open.Lines, DiffLine{Kind: Deletion, Content: op.text, OldLine: intRef(oldNo)})
			open.OldLines++
			oldNo++
		case 'i':
			if open == nil {
				openHunk()
			}
			open.Lines = append(open.Lines, DiffLine{Kind: Addition, Content: op.text, NewLine: intRef(newNo)})
			open.NewLines++
			newNo++
		}
	}
	if open != nil {
		hunks = append(hunks, *open)
	}
	return hunks
}

func trailingContext(lines []DiffLine) int {
	n := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Kind != Context {
			break
		}
		n++
	}
	return n
}

// wholeFileHunk renders a file that exists on only one side as a single
// hunk of pure additions or deletions.
func wholeFileHunk(lines []string, kind LineKind) []Hunk {
	if len(lines) == 0 {
		return nil
	}
	hunk := Hunk{OldStart: 1, NewStart: 1}
	for i, text := range lines {
		line := DiffLine{Kind: kind, Content: text}
		if kind == Deletion {
			line.OldLine = intRef(i + 1)
		} else {
			line.NewLine = intRef(i + 1)
		}
		hunk.Lines = append(hunk.Lines, line)
	}
	if kind == Deletion {
		hunk.OldLines = len(lines)
	} else {
		hunk.NewLines = len(lines)
	}
	return []Hunk{hunk}
}

// splitContentLines splits file content into newline-stripped lines. Empty
// content has no lines; a trailing newline does not produce a final empty
// line.
func splitContentLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// isBinary reports whether data looks like binary content: a NUL byte within
// the first 8 KiB.
func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func intRef(n int) *int {
	return &n
}
