package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// highlighter colors context-line code with chroma tokens. Change lines keep
// their status colors so additions and deletions stay visually distinct.
type highlighter struct {
	enabled bool
	style   *chroma.Style

	lexerPath string
	lexer     chroma.Lexer
}

func newHighlighter(enabled bool, dark bool) *highlighter {
	return &highlighter{enabled: enabled, style: styleForScheme(dark)}
}

func styleForScheme(dark bool) *chroma.Style {
	if dark {
		if st := styles.Get("github-dark"); st != nil {
			return st
		}
	} else {
		if st := styles.Get("github"); st != nil {
			return st
		}
	}
	return styles.Fallback
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// line colors one line of code for the file at path, or returns it unchanged
// when highlighting is off or tokenizing fails.
func (h *highlighter) line(path, code string) string {
	if h == nil || !h.enabled || h.style == nil || code == "" {
		return code
	}
	if path != h.lexerPath {
		h.lexerPath = path
		h.lexer = lexerForPath(path)
	}
	if h.lexer == nil {
		return code
	}
	iterator, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var b strings.Builder
	for _, token := range iterator.Tokens() {
		if token.Value == "" {
			continue
		}
		color := colorFromEntry(h.style.Get(token.Type))
		if color == "" {
			b.WriteString(token.Value)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(token.Value))
	}
	return b.String()
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if entry.Colour.IsSet() {
		col := entry.Colour.String()
		col = strings.TrimPrefix(strings.ToLower(col), "#")
		return "#" + col
	}
	return ""
}
