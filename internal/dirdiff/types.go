package dirdiff

import "encoding/json"

// DiffStatus classifies one node of the comparison tree.
type DiffStatus int

const (
	Unchanged DiffStatus = iota
	Added
	Removed
	Modified
	// Conflicted is reserved for future three-way comparisons; Analyze never
	// produces it.
	Conflicted
)

func (s DiffStatus) String() string {
	switch s {
	case Added:
		return "Added"
	case Removed:
		return "Removed"
	case Modified:
		return "Modified"
	case Conflicted:
		return "Conflicted"
	default:
		return "Unchanged"
	}
}

// Icon returns the single-character marker shown next to tree entries.
func (s DiffStatus) Icon() string {
	switch s {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Modified:
		return "~"
	case Conflicted:
		return "!"
	default:
		return " "
	}
}

func (s DiffStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DiffStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Added":
		*s = Added
	case "Removed":
		*s = Removed
	case "Modified":
		*s = Modified
	case "Conflicted":
		*s = Conflicted
	default:
		*s = Unchanged
	}
	return nil
}

// TreeNode is one entry of the comparison tree. The synthetic root has an
// empty RelPath. Children are sorted directories-first, then by name; the
// ordering is deterministic regardless of how the roots were traversed.
type TreeNode struct {
	RelPath  string      `json:"relative_path"`
	IsDir    bool        `json:"is_directory"`
	Status   DiffStatus  `json:"status"`
	Size     *int64      `json:"size,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// DiffResult is the output of Analyze: the classified tree plus aggregate
// counts over regular files.
type DiffResult struct {
	LeftPath      string    `json:"left_path"`
	RightPath     string    `json:"right_path"`
	Tree          *TreeNode `json:"tree"`
	TotalFiles    int       `json:"total_files"`
	AddedCount    int       `json:"added_count"`
	RemovedCount  int       `json:"removed_count"`
	ModifiedCount int       `json:"modified_count"`
}

// LineKind tags a single diff line.
type LineKind int

const (
	Context LineKind = iota
	Addition
	Deletion
)

func (k LineKind) String() string {
	switch k {
	case Addition:
		return "Addition"
	case Deletion:
		return "Deletion"
	default:
		return "Context"
	}
}

// Prefix returns the unified-diff marker for the line kind.
func (k LineKind) Prefix() string {
	switch k {
	case Addition:
		return "+"
	case Deletion:
		return "-"
	default:
		return " "
	}
}

func (k LineKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LineKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Addition":
		*k = Addition
	case "Deletion":
		*k = Deletion
	default:
		*k = Context
	}
	return nil
}

// DiffLine is a single rendered line of a hunk. Content has the trailing
// newline stripped. Context lines carry both line numbers; additions and
// deletions carry exactly one.
type DiffLine struct {
	Kind    LineKind `json:"kind"`
	Content string   `json:"content"`
	OldLine *int     `json:"old_line_number,omitempty"`
	NewLine *int     `json:"new_line_number,omitempty"`
}

// Hunk is a contiguous block of changes padded with up to contextLines of
// unchanged context. Starts are 1-based; the length fields count only
// deletions (old) and additions (new).
type Hunk struct {
	OldStart int        `json:"old_start"`
	OldLines int        `json:"old_lines"`
	NewStart int        `json:"new_start"`
	NewLines int        `json:"new_lines"`
	Lines    []DiffLine `json:"lines"`
}

// FileDiff holds both sides of one file plus the computed hunks. A nil
// content means that side does not exist. Binary pairs are not split into
// lines; Binary is set and Hunks left empty.
type FileDiff struct {
	LeftContent  *string `json:"left_content"`
	RightContent *string `json:"right_content"`
	Binary       bool    `json:"binary,omitempty"`
	Hunks        []Hunk  `json:"hunks"`
}
