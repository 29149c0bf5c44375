package document

import "strings"

// Heading is an ATX heading found outside fenced code blocks.
type Heading struct {
	Level  int
	Title  string
	Line   string
	Offset int // byte offset of the heading line
	End    int // byte offset just past the heading line (including its newline)
}

// Span is a half-open byte range [Start, End) of a document.
type Span struct {
	Start int
	End   int
}

// Headings returns every ATX heading in document order.
func Headings(text string) []Heading {
	var out []Heading
	inFence := false
	offset := 0
	for offset < len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		next := len(text)
		if end >= 0 {
			next = offset + end + 1
		}
		line := strings.TrimRight(text[offset:next], "\r\n")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		} else if !inFence {
			if level, title, ok := parseHeading(line); ok {
				out = append(out, Heading{Level: level, Title: title, Line: line, Offset: offset, End: next})
			}
		}
		offset = next
	}
	return out
}

func parseHeading(line string) (int, string, bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 6 {
		return 0, "", false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	return level, strings.TrimSpace(rest), true
}

// SectionSpan returns the span of h: from its line to the next heading of the
// same or a higher level, or the end of the document.
func SectionSpan(text string, headings []Heading, idx int) Span {
	h := headings[idx]
	for _, next := range headings[idx+1:] {
		if next.Level <= h.Level {
			return Span{Start: h.Offset, End: next.Offset}
		}
	}
	return Span{Start: h.Offset, End: len(text)}
}

// FindSection locates the first heading whose line satisfies match.
func FindSection(text string, match func(h Heading) bool) (Heading, Span, bool) {
	headings := Headings(text)
	for i, h := range headings {
		if match(h) {
			return h, SectionSpan(text, headings, i), true
		}
	}
	return Heading{}, Span{}, false
}

// FirstHeading returns the offset of the first heading at exactly level.
func FirstHeading(text string, level int) (int, bool) {
	for _, h := range Headings(text) {
		if h.Level == level {
			return h.Offset, true
		}
	}
	return 0, false
}

// LineEnd returns the offset just past the line containing offset.
func LineEnd(text string, offset int) int {
	if offset >= len(text) {
		return len(text)
	}
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		return offset + i + 1
	}
	return len(text)
}

// LineStart returns the offset of the start of the line containing offset.
func LineStart(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

// BlockEnd returns the end of the run of non-blank lines that begins at the
// line after offset. Headings terminate the run.
func BlockEnd(text string, offset int) int {
	pos := LineEnd(text, offset)
	for pos < len(text) {
		next := LineEnd(text, pos)
		line := strings.TrimSpace(text[pos:next])
		if line == "" || strings.HasPrefix(line, "#") {
			return pos
		}
		pos = next
	}
	return pos
}

// TrimTrailingBlank moves end back over trailing blank lines so insertions
// land directly after a section's last content line.
func TrimTrailingBlank(text string, start, end int) int {
	for end > start {
		ls := LineStart(text, end-1)
		if strings.TrimSpace(text[ls:end]) != "" {
			return end
		}
		end = ls
	}
	return end
}

// InsertBlock splices block into text at a line boundary, separated from
// surrounding content by blank lines. Existing characters are never altered.
func InsertBlock(text string, offset int, block string) string {
	offset = clampToLineStart(text, offset)
	prefix, suffix := text[:offset], text[offset:]
	var b strings.Builder
	b.Grow(len(text) + len(block) + 4)
	b.WriteString(prefix)
	if prefix != "" {
		if !strings.HasSuffix(prefix, "\n") {
			b.WriteString("\n")
		}
		if !strings.HasSuffix(prefix, "\n\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString(strings.Trim(block, "\n"))
	b.WriteString("\n")
	if suffix != "" {
		if !strings.HasPrefix(suffix, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(suffix)
	}
	return b.String()
}

// InsertLines splices lines directly at a line boundary without blank-line
// padding, so they continue the block that precedes offset.
func InsertLines(text string, offset int, lines []string) string {
	if len(lines) == 0 {
		return text
	}
	offset = clampToLineStart(text, offset)
	prefix, suffix := text[:offset], text[offset:]
	var b strings.Builder
	b.WriteString(prefix)
	if prefix != "" && !strings.HasSuffix(prefix, "\n") {
		b.WriteString("\n")
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(suffix)
	return b.String()
}

func clampToLineStart(text string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset >= len(text) {
		return len(text)
	}
	if offset == 0 || text[offset-1] == '\n' {
		return offset
	}
	return LineEnd(text, offset)
}
