package mutation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

var (
	listItem     = regexp.MustCompile(`^(?:\d+\.|[-*+])\s`)
	numberedLine = regexp.MustCompile(`^\s*(\d+)\.\s`)
	headingIndex = regexp.MustCompile(`^[\d.]+\s+`)
)

// workspace is the view of the working text one strategy operates on.
type workspace struct {
	text      string
	loc       document.Locale
	lang      document.Language
	companion string
	templates *TemplateSet
}

func (w *workspace) section(m document.Marker) (string, error) {
	s, ok := w.templates.Section(w.lang, m)
	if !ok {
		return "", fmt.Errorf("%w: section %s (%s)", ErrTemplateMissing, m, w.lang)
	}
	return s, nil
}

func (w *workspace) examples(k ExampleKind) ([]string, error) {
	s, ok := w.templates.Example(w.lang, k)
	if !ok {
		return nil, fmt.Errorf("%w: %s examples (%s)", ErrTemplateMissing, k, w.lang)
	}
	return s, nil
}

func (w *workspace) terms(v document.Vocabulary, missing []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, t := range missing {
		block, ok := w.templates.Term(w.lang, v, t)
		if !ok {
			return nil, fmt.Errorf("%w: term %q (%s)", ErrTemplateMissing, t, w.lang)
		}
		if !seen[block] {
			seen[block] = true
			out = append(out, block)
		}
	}
	return out, nil
}

// sectionEnd returns the offset just past the last content line of the
// section for m.
func (w *workspace) sectionEnd(m document.Marker) (int, bool) {
	_, span, ok := w.loc.FindMarker(w.text, m)
	if !ok {
		return 0, false
	}
	return document.TrimTrailingBlank(w.text, span.Start, span.End), true
}

func (w *workspace) after(ms ...document.Marker) int {
	for _, m := range ms {
		if end, ok := w.sectionEnd(m); ok {
			return end
		}
	}
	return len(w.text)
}

// anchor picks where a new section for m goes, following the conventional
// section order of requirements and design documents.
func (w *workspace) anchor(m document.Marker) int {
	switch m {
	case document.MarkerIntroduction, document.MarkerOverview:
		if off, ok := document.FirstHeading(w.text, 2); ok {
			return off
		}
	case document.MarkerGlossary, document.MarkerStories:
		return w.after(document.MarkerIntroduction)
	case document.MarkerRequirements:
		return w.after(document.MarkerStories, document.MarkerGlossary, document.MarkerIntroduction)
	case document.MarkerArchitecture:
		return w.after(document.MarkerOverview)
	case document.MarkerComponents:
		return w.after(document.MarkerArchitecture, document.MarkerOverview)
	case document.MarkerInterfaces:
		return w.after(document.MarkerComponents, document.MarkerArchitecture)
	case document.MarkerTechnology:
		return w.after(document.MarkerInterfaces, document.MarkerComponents, document.MarkerArchitecture)
	}
	return len(w.text)
}

// insertSection adds the template for m, followed by extra blocks.
func (w *workspace) insertSection(m document.Marker, extra ...string) (string, error) {
	tmpl, err := w.section(m)
	if err != nil {
		return "", err
	}
	block := strings.Join(append([]string{tmpl}, extra...), "\n\n")
	out := document.InsertBlock(w.text, w.anchor(m), block)
	if !w.loc.HasMarker(out, m) {
		return "", fmt.Errorf("%w: %s", ErrTemplateIneffective, m)
	}
	return out, nil
}

// coverSection makes sure the section for m exists and names every term of v.
func (w *workspace) coverSection(m document.Marker, v document.Vocabulary) (string, error) {
	missing := w.loc.MissingTerms(w.text, v)
	if end, ok := w.sectionEnd(m); ok {
		if len(missing) == 0 {
			return w.text, nil
		}
		blocks, err := w.terms(v, missing)
		if err != nil {
			return "", err
		}
		return document.InsertBlock(w.text, end, strings.Join(blocks, "\n\n")), nil
	}
	if len(missing) == 0 && w.loc.HasMarker(w.text, m) {
		return w.text, nil
	}
	head, err := w.section(m)
	if err != nil {
		return "", err
	}
	blocks, err := w.terms(v, w.loc.MissingTerms(w.text+"\n"+head, v))
	if err != nil {
		return "", err
	}
	return w.insertSection(m, blocks...)
}

// componentNames lists design element names from the subsections of the
// components, interfaces and architecture sections, followed by the
// localized default pool.
func (w *workspace) componentNames() ([]string, error) {
	pool, err := w.examples(ExampleComponent)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, m := range []document.Marker{document.MarkerComponents, document.MarkerInterfaces, document.MarkerArchitecture} {
		h, span, ok := w.loc.FindMarker(w.text, m)
		if !ok {
			continue
		}
		for _, sub := range document.Headings(w.text[span.Start:span.End]) {
			if sub.Level > h.Level {
				add(strings.TrimSpace(headingIndex.ReplaceAllString(sub.Title, "")))
			}
		}
	}
	for _, name := range pool {
		add(name)
	}
	return names, nil
}

// requirementIDs returns ids, or those of the companion document, or n
// generated identifiers continuing after current.
func (w *workspace) requirementIDs(ids []string, current, n int) []string {
	if len(ids) > 0 {
		return ids
	}
	if w.companion != "" {
		if found := document.RequirementIDs(w.companion); len(found) > 0 {
			return found
		}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = "1." + strconv.Itoa(current+i+1)
	}
	return out
}

// listAfter finds the list that follows the line at offset, allowing blank
// lines in between.
func listAfter(text string, offset int) (start, end int, ok bool) {
	p := document.LineEnd(text, offset)
	for p < len(text) {
		next := document.LineEnd(text, p)
		line := strings.TrimSpace(text[p:next])
		switch {
		case line == "":
			p = next
		case listItem.MatchString(line):
			return p, document.BlockEnd(text, p), true
		default:
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// nextNumber returns the number following the highest numbered item in
// text[start:end].
func nextNumber(text string, start, end int) int {
	highest := 0
	for _, line := range strings.Split(text[start:end], "\n") {
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
				highest = n
			}
		}
	}
	return highest + 1
}

// pick returns n snippets from pool, preferring ones not yet in text.
func pick(pool []string, n int, text string) []string {
	var fresh, used []string
	for _, p := range pool {
		if strings.Contains(text, p) {
			used = append(used, p)
		} else {
			fresh = append(fresh, p)
		}
	}
	order := append(fresh, used...)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, order[i%len(order)])
	}
	return out
}

// joinItems joins list items line by line and paragraphs with blank lines.
func joinItems(items []string) string {
	for _, it := range items {
		if !listItem.MatchString(it) {
			return strings.Join(items, "\n\n")
		}
	}
	return strings.Join(items, "\n")
}
