package probe

import (
	"regexp"
	"strings"
)

var (
	// CSI sequences (colors, cursor movement) and OSC sequences (hyperlinks, titles)
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)
)

// CleanOutput strips terminal escape sequences and man-page overstrike
// ("_\bx" underline, "x\bx" bold) from captured help text.
func CleanOutput(text string) string {
	text = ansiPattern.ReplaceAllString(text, "")
	if !strings.ContainsRune(text, '\b') {
		return text
	}

	out := make([]rune, 0, len(text))
	for _, r := range text {
		if r == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
