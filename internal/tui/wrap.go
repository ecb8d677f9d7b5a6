package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text at spaces so no line exceeds width display columns.
// Words wider than width are split; runs of spaces collapse. Existing line
// breaks are kept.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	paragraphs := strings.Split(text, "\n")
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		lines = append(lines, wrapParagraph(p, width)...)
	}
	return strings.Join(lines, "\n")
}

func wrapParagraph(text string, width int) []string {
	var (
		lines     []string
		line      strings.Builder
		lineWidth int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, word := range strings.Fields(text) {
		for runewidth.StringWidth(word) > width {
			if lineWidth > 0 {
				flush()
			}
			head := splitAt(word, width)
			lines = append(lines, head)
			word = word[len(head):]
		}
		w := runewidth.StringWidth(word)
		if w == 0 {
			continue
		}
		if lineWidth > 0 && lineWidth+1+w > width {
			flush()
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if lineWidth > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// splitAt returns the longest prefix of word that fits in width cells, and
// at least one rune.
func splitAt(word string, width int) string {
	head := runewidth.Truncate(word, width, "")
	if head == "" {
		_, size := utf8.DecodeRuneInString(word)
		head = word[:size]
	}
	return head
}

// indentWrapped wraps text to width minus the prefix and aligns
// continuation lines under the first.
func indentWrapped(prefix, text string, width int) string {
	indent := strings.Repeat(" ", runewidth.StringWidth(prefix))
	inner := width - len(indent)
	if width <= 0 || inner < 1 {
		return prefix + text
	}
	return prefix + strings.ReplaceAll(wrapText(text, inner), "\n", "\n"+indent)
}
