package editor

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// splitGraphemes returns the grapheme clusters of text in order.
func splitGraphemes(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

func joinGraphemes(clusters []string) string {
	if len(clusters) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range clusters {
		sb.WriteString(c)
	}
	return sb.String()
}

// normalizeLineBreaks turns "\r\n" and lone "\r" into "\n".
func normalizeLineBreaks(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
}

func isLineBreak(cluster string) bool {
	return cluster == "\n" || cluster == "\r\n"
}

// displayWidth is the terminal cell width of clusters.
func displayWidth(clusters []string) int {
	w := 0
	for _, c := range clusters {
		cw := runewidth.StringWidth(c)
		if cw == 0 {
			cw = uniseg.StringWidth(c)
		}
		w += cw
	}
	return w
}
