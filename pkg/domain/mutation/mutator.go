package mutation

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/improvement"
)

const (
	// maxExamples caps the snippets one density improvement inserts per
	// cycle; later cycles continue from the recounted text.
	maxExamples = 5
	// maxEdgeCases caps edge-case blocks per cycle.
	maxEdgeCases = 3
)

// Failure records an improvement that could not be applied.
type Failure struct {
	Improvement improvement.Improvement
	Err         error
}

func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Improvement improvement.Improvement `json:"improvement"`
		Reason      string                  `json:"reason"`
	}{f.Improvement, f.Err.Error()})
}

// Result is the outcome of applying a batch of improvements.
type Result struct {
	Content  string
	Language document.Language
	Applied  []improvement.Improvement
	Failed   []Failure
	// Skipped improvements needed no change: their target was already
	// present in the working text.
	Skipped []improvement.Improvement
	Report  string
}

// Mutator applies improvements to document text with template-driven
// strategies. It never removes or rewrites existing lines.
type Mutator struct {
	templates *TemplateSet
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithTemplates replaces the built-in templates.
func WithTemplates(t *TemplateSet) Option {
	return func(m *Mutator) {
		if t != nil {
			m.templates = t
		}
	}
}

func NewMutator(opts ...Option) *Mutator {
	m := &Mutator{templates: DefaultTemplates()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type strategy func(w *workspace, imp improvement.Improvement) (string, error)

// Apply runs every improvement in order against a working copy of text. A
// failing improvement is recorded and the batch continues.
func (m *Mutator) Apply(text string, imps []improvement.Improvement, lang document.Language, companion string) Result {
	loc := document.LocaleFor(lang)
	res := Result{Content: text, Language: loc.Language()}
	for _, imp := range imps {
		if imp.Metadata.Language != "" && imp.Metadata.Language != res.Language {
			res.Failed = append(res.Failed, Failure{imp, fmt.Errorf("%w: %s", ErrLocaleMismatch, imp.Metadata.Language)})
			continue
		}
		run, err := m.strategy(imp.Category)
		if err != nil {
			res.Failed = append(res.Failed, Failure{imp, err})
			continue
		}
		w := &workspace{text: res.Content, loc: loc, lang: res.Language, companion: companion, templates: m.templates}
		next, err := run(w, imp)
		switch {
		case err != nil:
			res.Failed = append(res.Failed, Failure{imp, err})
		case next == res.Content:
			res.Skipped = append(res.Skipped, imp)
		case !document.Preserves(res.Content, next):
			res.Failed = append(res.Failed, Failure{imp, ErrContentLoss})
		default:
			res.Content = next
			res.Applied = append(res.Applied, imp)
		}
	}
	res.Report = RenderReport(res)
	return res
}

func (m *Mutator) strategy(c improvement.Category) (strategy, error) {
	switch c {
	case improvement.AddSection:
		return addSection, nil
	case improvement.StrengthenCriteria:
		return strengthenCriteria, nil
	case improvement.AddNonFunctionalRequirement:
		return addNonFunctional, nil
	case improvement.AddErrorHandling:
		return addErrorHandling, nil
	case improvement.AddEdgeCases:
		return addEdgeCases, nil
	case improvement.AddGlossaryTerm:
		return addGlossary, nil
	case improvement.AddComponentDetail:
		return addComponentDetail, nil
	case improvement.AddTraceability:
		return addTraceability, nil
	case improvement.AddProperties:
		return addProperties, nil
	case improvement.AddRationale:
		return addRationale, nil
	case improvement.AddDiagram:
		return addDiagram, nil
	}
	return nil, fmt.Errorf("%w: %s", improvement.ErrUnknownCategory, c)
}
