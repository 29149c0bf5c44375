package mutation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/improvement"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

func addSection(w *workspace, imp improvement.Improvement) (string, error) {
	m := imp.Metadata.Marker
	if m == "" {
		return "", ErrNoTarget
	}
	if w.loc.HasMarker(w.text, m) {
		return w.text, nil
	}
	return w.insertSection(m)
}

func addGlossary(w *workspace, imp improvement.Improvement) (string, error) {
	if w.loc.HasMarker(w.text, document.MarkerGlossary) {
		return w.text, nil
	}
	return w.insertSection(document.MarkerGlossary)
}

func addNonFunctional(w *workspace, imp improvement.Improvement) (string, error) {
	m := imp.Metadata.Marker
	if m == "" {
		m = document.MarkerNonFunctional
		if imp.Criterion == quality.CriterionNFRDesign {
			m = document.MarkerNFRDesign
		}
	}
	v := document.VocabNFR
	if m == document.MarkerNFRDesign {
		v = document.VocabNFRDesign
	}
	return w.coverSection(m, v)
}

func addErrorHandling(w *workspace, imp improvement.Improvement) (string, error) {
	return w.coverSection(document.MarkerErrorHandling, document.VocabErrors)
}

func addRationale(w *workspace, imp improvement.Improvement) (string, error) {
	return w.coverSection(document.MarkerTechnology, document.VocabTechnology)
}

func strengthenCriteria(w *workspace, imp improvement.Improvement) (string, error) {
	if imp.Criterion == quality.CriterionStories {
		return addStories(w, imp)
	}
	need := min(imp.Metadata.Target-w.loc.CountIdiom(w.text, document.IdiomCriterion), maxExamples)
	if need <= 0 {
		return w.text, nil
	}
	pool, err := w.examples(ExampleCriterion)
	if err != nil {
		return "", err
	}
	chosen := pick(pool, need, w.text)

	if acc := w.loc.IdiomLines(w.text, document.IdiomAcceptance); len(acc) > 0 {
		if start, end, ok := listAfter(w.text, acc[0]); ok {
			return document.InsertLines(w.text, end, numbered(chosen, nextNumber(w.text, start, end))), nil
		}
		return document.InsertBlock(w.text, document.LineEnd(w.text, acc[0]), strings.Join(numbered(chosen, 1), "\n")), nil
	}
	return document.InsertBlock(w.text, w.requirementBlockEnd(), strings.Join(numbered(chosen, 1), "\n")), nil
}

func addStories(w *workspace, imp improvement.Improvement) (string, error) {
	need := min(imp.Metadata.Target-w.loc.CountIdiom(w.text, document.IdiomStory), maxExamples)
	if need <= 0 {
		return w.text, nil
	}
	pool, err := w.examples(ExampleStory)
	if err != nil {
		return "", err
	}
	chosen := pick(pool, need, w.text)
	block := joinItems(chosen)

	if stories := w.loc.IdiomLines(w.text, document.IdiomStory); len(stories) > 0 {
		first := stories[0]
		end := document.BlockEnd(w.text, first)
		line := strings.TrimSpace(w.text[first:document.LineEnd(w.text, first)])
		if listItem.MatchString(line) && listItem.MatchString(chosen[0]) {
			return document.InsertLines(w.text, end, chosen), nil
		}
		return document.InsertBlock(w.text, end, block), nil
	}
	if end, ok := w.sectionEnd(document.MarkerStories); ok {
		return document.InsertBlock(w.text, end, block), nil
	}
	if h, ok := w.firstRequirement(); ok {
		return document.InsertBlock(w.text, h.End, block), nil
	}
	return document.InsertBlock(w.text, len(w.text), block), nil
}

// firstRequirement returns the first subsection of the requirements section.
func (w *workspace) firstRequirement() (document.Heading, bool) {
	h, span, ok := w.loc.FindMarker(w.text, document.MarkerRequirements)
	if !ok {
		return document.Heading{}, false
	}
	for _, sub := range document.Headings(w.text) {
		if sub.Offset > span.Start && sub.Offset < span.End && sub.Level > h.Level {
			return sub, true
		}
	}
	return document.Heading{}, false
}

// requirementBlockEnd is the end of the first requirement, then of the
// requirements section, then of the document.
func (w *workspace) requirementBlockEnd() int {
	if sub, ok := w.firstRequirement(); ok {
		headings := document.Headings(w.text)
		for i, h := range headings {
			if h.Offset == sub.Offset {
				span := document.SectionSpan(w.text, headings, i)
				return document.TrimTrailingBlank(w.text, span.Start, span.End)
			}
		}
	}
	return w.after(document.MarkerRequirements)
}

func numbered(items []string, from int) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = fmt.Sprintf("%d. %s", from+i, it)
	}
	return out
}

func addEdgeCases(w *workspace, imp improvement.Improvement) (string, error) {
	need := min(imp.Metadata.Target-w.loc.CountIdiom(w.text, document.IdiomAcceptance), maxEdgeCases)
	if need <= 0 {
		return w.text, nil
	}
	pool, err := w.examples(ExampleEdgeCase)
	if err != nil {
		return "", err
	}
	block := strings.Join(pick(pool, need, w.text), "\n\n")
	return document.InsertBlock(w.text, w.after(document.MarkerRequirements), block), nil
}

func addComponentDetail(w *workspace, imp improvement.Improvement) (string, error) {
	if imp.Criterion != quality.CriterionInterfaces {
		if w.loc.HasMarker(w.text, document.MarkerComponents) {
			return w.text, nil
		}
		return w.insertSection(document.MarkerComponents)
	}
	need := min(imp.Metadata.Target-w.loc.CountIdiom(w.text, document.IdiomInterface), maxExamples)
	if need <= 0 {
		return w.text, nil
	}
	pool, err := w.examples(ExampleInterface)
	if err != nil {
		return "", err
	}
	block := joinItems(pick(pool, need, w.text))
	for _, m := range []document.Marker{document.MarkerComponents, document.MarkerInterfaces} {
		if end, ok := w.sectionEnd(m); ok {
			return document.InsertBlock(w.text, end, block), nil
		}
	}
	return w.insertSection(document.MarkerComponents, block)
}

func addTraceability(w *workspace, imp improvement.Improvement) (string, error) {
	current := w.loc.CountIdiom(w.text, document.IdiomTraceRef)
	need := min(imp.Metadata.Target-current, maxExamples)
	if need <= 0 {
		return w.text, nil
	}
	format, err := w.examples(ExampleTrace)
	if err != nil {
		return "", err
	}
	comps, err := w.componentNames()
	if err != nil {
		return "", err
	}
	ids := w.requirementIDs(imp.Metadata.RequirementIDs, current, need)
	var items []string
	all := pairs(ids, comps)
	for _, f := range format {
		for _, p := range all {
			if len(items) == need {
				break
			}
			if line := fmt.Sprintf(f, p[0], p[1]); !strings.Contains(w.text, line) && !slices.Contains(items, line) {
				items = append(items, line)
			}
		}
	}
	if len(items) == 0 {
		return w.text, nil
	}
	block := strings.Join(items, "\n")
	if end, ok := w.sectionEnd(document.MarkerTraceability); ok {
		return document.InsertBlock(w.text, end, block), nil
	}
	return w.insertSection(document.MarkerTraceability, block)
}

func addProperties(w *workspace, imp improvement.Improvement) (string, error) {
	current := w.loc.CountIdiom(w.text, document.IdiomTraceRef)
	need := min(imp.Metadata.Target-current, maxExamples)
	if need <= 0 {
		return w.text, nil
	}
	format, err := w.examples(ExampleProperty)
	if err != nil {
		return "", err
	}
	comps, err := w.componentNames()
	if err != nil {
		return "", err
	}
	label, ok := propertyLabel(format[0])
	if !ok {
		return "", fmt.Errorf("%w: property example %q has no %%d number", ErrTemplateMalformed, format[0])
	}
	ids := w.requirementIDs(imp.Metadata.RequirementIDs, current, need)
	first := strings.Count(w.text, label) + 1
	all := pairs(ids, comps)
	items := make([]string, need)
	for i := range items {
		p := all[i%len(all)]
		items[i] = fmt.Sprintf(format[0], first+i, p[1], p[0])
	}
	block := strings.Join(items, "\n")
	if end, ok := w.sectionEnd(document.MarkerProperties); ok {
		return document.InsertBlock(w.text, end, block), nil
	}
	return w.insertSection(document.MarkerProperties, block)
}

// propertyLabel returns the text preceding the property number, used to
// continue an existing numbering.
func propertyLabel(format string) (string, bool) {
	i := strings.Index(format, "%d")
	if i < 0 {
		return "", false
	}
	return strings.TrimPrefix(format[:i], "- "), true
}

// pairs matches every requirement to a design element, covering each
// requirement once before reusing it with the next element.
func pairs(ids, comps []string) [][2]string {
	out := make([][2]string, 0, len(ids)*len(comps))
	for r := range comps {
		for i, id := range ids {
			out = append(out, [2]string{id, comps[(i+r)%len(comps)]})
		}
	}
	return out
}

func addDiagram(w *workspace, imp improvement.Improvement) (string, error) {
	count := w.loc.CountIdiom(w.text, document.IdiomDiagram)
	if count >= imp.Metadata.Target && imp.Metadata.Target > 0 {
		return w.text, nil
	}
	pool, err := w.examples(ExampleDiagram)
	if err != nil {
		return "", err
	}
	var chosen []string
	for _, d := range pool {
		title, _, _ := strings.Cut(d, "\n")
		if strings.Contains(w.text, title) {
			continue
		}
		chosen = append(chosen, d)
		count += w.loc.CountIdiom(d, document.IdiomDiagram)
		if count >= imp.Metadata.Target {
			break
		}
	}
	if len(chosen) == 0 {
		return w.text, nil
	}
	return document.InsertBlock(w.text, w.after(document.MarkerArchitecture), strings.Join(chosen, "\n\n")), nil
}
