package document

import "strings"

// Preserves reports whether every non-blank line of original appears, in
// order and verbatim, among the lines of modified.
func Preserves(original, modified string) bool {
	want := nonBlankLines(original)
	if len(want) == 0 {
		return true
	}
	i := 0
	for _, line := range strings.Split(modified, "\n") {
		if strings.TrimRight(line, "\r") == want[i] {
			i++
			if i == len(want) {
				return true
			}
		}
	}
	return false
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
