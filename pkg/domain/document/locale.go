package document

import (
	"regexp"
	"strings"
)

// Marker names a structural landmark (usually a heading) whose presence is
// checked by the scoring model and located by the mutator.
type Marker string

const (
	MarkerIntroduction  Marker = "introduction"
	MarkerGlossary      Marker = "glossary"
	MarkerStories       Marker = "stories"
	MarkerRequirements  Marker = "requirements"
	MarkerNonFunctional Marker = "non-functional"
	MarkerConstraints   Marker = "constraints"
	MarkerOverview      Marker = "overview"
	MarkerArchitecture  Marker = "architecture"
	MarkerComponents    Marker = "components"
	MarkerInterfaces    Marker = "interfaces"
	MarkerTraceability  Marker = "traceability"
	MarkerProperties    Marker = "properties"
	MarkerTechnology    Marker = "technology"
	MarkerNFRDesign     Marker = "nfr-design"
	MarkerErrorHandling Marker = "error-handling"
)

// Idiom names a recurring sentence or block shape that is counted.
type Idiom string

const (
	IdiomCriterion  Idiom = "criterion"  // condition -> consequence sentence
	IdiomStory      Idiom = "story"      // role -> goal -> benefit sentence
	IdiomAcceptance Idiom = "acceptance" // acceptance-criteria block marker
	IdiomTraceRef   Idiom = "trace-ref"  // reference to a numbered requirement
	IdiomDiagram    Idiom = "diagram"
	IdiomInterface  Idiom = "interface"
)

// Vocabulary names a fixed keyword list whose coverage is measured.
type Vocabulary string

const (
	VocabNFR        Vocabulary = "nfr"
	VocabTechnology Vocabulary = "technology"
	VocabNFRDesign  Vocabulary = "nfr-design"
	VocabErrors     Vocabulary = "errors"
)

// Locale is the predicate set for one language. Scoring arithmetic and
// mutation strategies only talk to a Locale, never to raw patterns.
type Locale interface {
	Language() Language
	HasMarker(text string, m Marker) bool
	// FindMarker locates the first heading that carries m.
	FindMarker(text string, m Marker) (Heading, Span, bool)
	CountIdiom(text string, id Idiom) int
	// IdiomLines returns the byte offsets of lines containing id, in order.
	IdiomLines(text string, id Idiom) []int
	Terms(v Vocabulary) []string
	MissingTerms(text string, v Vocabulary) []string
	Label(m Marker) string
}

type markerRule struct {
	needles []string
	fold    bool
	label   string
}

type vocabulary struct {
	terms []string
	fold  bool
}

type patternSet struct {
	lang    Language
	markers map[Marker]markerRule
	idioms  map[Idiom]*regexp.Regexp
	vocab   map[Vocabulary]vocabulary
}

var locales = map[Language]*patternSet{
	LanguageEN: {
		lang: LanguageEN,
		markers: map[Marker]markerRule{
			MarkerIntroduction:  {needles: []string{"## Introduction", "## Overview"}, label: "Introduction"},
			MarkerGlossary:      {needles: []string{"## Glossary", "## Terminology"}, label: "Glossary"},
			MarkerStories:       {needles: []string{"user stories", "user story"}, fold: true, label: "User Stories"},
			MarkerRequirements:  {needles: []string{"## Requirements", "## Functional Requirements"}, label: "Requirements"},
			MarkerNonFunctional: {needles: []string{"Non-functional", "Non-Functional"}, label: "Non-functional Requirements"},
			MarkerConstraints:   {needles: []string{"constraint", "limitation"}, fold: true, label: "Constraints"},
			MarkerOverview:      {needles: []string{"## Overview", "## Introduction"}, label: "Overview"},
			MarkerArchitecture:  {needles: []string{"## Architecture", "## System Architecture"}, label: "Architecture"},
			MarkerComponents:    {needles: []string{"## Components", "## Component"}, label: "Components"},
			MarkerInterfaces:    {needles: []string{"## Interface", "## Data Flow", "## API"}, label: "Interfaces"},
			MarkerTraceability:  {needles: []string{"traceability"}, fold: true, label: "Requirements Traceability"},
			MarkerProperties:    {needles: []string{"correctness properties"}, fold: true, label: "Correctness Properties"},
			MarkerTechnology:    {needles: []string{"## Technology Stack", "## Technology"}, label: "Technology Stack"},
			MarkerNFRDesign:     {needles: []string{"non-functional design"}, fold: true, label: "Non-functional Design"},
			MarkerErrorHandling: {needles: []string{"## Error Handling"}, label: "Error Handling"},
		},
		idioms: map[Idiom]*regexp.Regexp{
			IdiomCriterion:  regexp.MustCompile(`(?i)WHEN.*THEN|IF.*THEN`),
			IdiomStory:      regexp.MustCompile(`(?i)As a.*I want.*So that`),
			IdiomAcceptance: regexp.MustCompile(`(?i)Acceptance Criteria`),
			IdiomTraceRef:   regexp.MustCompile(`(?i)Requirements?\s+\d+\.\d+|_Requirements:\s+\d+\.\d+|Validates:\s+Requirements?\s+\d+\.\d+`),
			IdiomDiagram:    regexp.MustCompile("(?i)```mermaid|```plantuml|```diagram|Architecture Diagram|Component Diagram"),
			IdiomInterface:  regexp.MustCompile(`(?i)Interface|API\s+Design|Data\s+Model|Data\s+Structure|Parameter`),
		},
		vocab: map[Vocabulary]vocabulary{
			VocabNFR:        {terms: []string{"performance", "security", "usability", "maintainability", "compatibility", "scalability"}, fold: true},
			VocabTechnology: {terms: []string{"technology", "framework", "database", "api", "protocol", "stack", "library"}, fold: true},
			VocabNFRDesign:  {terms: []string{"performance", "security", "scalability", "fault tolerance", "monitoring", "error handling"}, fold: true},
			VocabErrors:     {terms: []string{"fault tolerance", "error handling"}, fold: true},
		},
	},
	LanguageZH: {
		lang: LanguageZH,
		markers: map[Marker]markerRule{
			MarkerIntroduction:  {needles: []string{"## 1. 概述", "## Introduction"}, label: "概述"},
			MarkerGlossary:      {needles: []string{"## 术语表", "## 术语"}, label: "术语表"},
			MarkerStories:       {needles: []string{"## 2. 用户故事"}, label: "用户故事"},
			MarkerRequirements:  {needles: []string{"## 3. 功能需求"}, label: "功能需求"},
			MarkerNonFunctional: {needles: []string{"## 4. 非功能需求"}, label: "非功能需求"},
			MarkerConstraints:   {needles: []string{"约束条件", "限制"}, label: "约束条件"},
			MarkerOverview:      {needles: []string{"## 1. 系统概述", "## 1. 概述", "## Overview"}, label: "系统概述"},
			MarkerArchitecture:  {needles: []string{"## 2. 架构设计", "## Architecture"}, label: "架构设计"},
			MarkerComponents:    {needles: []string{"## 3. 组件设计", "## Components"}, label: "组件设计"},
			MarkerInterfaces:    {needles: []string{"## 4. 数据流设计", "## 4. 接口设计"}, label: "数据流/接口设计"},
			MarkerTraceability:  {needles: []string{"需求追溯"}, label: "需求追溯"},
			MarkerProperties:    {needles: []string{"正确性属性"}, label: "正确性属性"},
			MarkerTechnology:    {needles: []string{"## 技术选型"}, label: "技术选型"},
			MarkerNFRDesign:     {needles: []string{"非功能设计"}, label: "非功能设计"},
			MarkerErrorHandling: {needles: []string{"## 容错机制"}, label: "容错机制"},
		},
		idioms: map[Idiom]*regexp.Regexp{
			IdiomCriterion:  regexp.MustCompile(`(?i)WHEN.*THEN`),
			IdiomStory:      regexp.MustCompile(`作为.*我希望.*以便`),
			IdiomAcceptance: regexp.MustCompile(`\*\*验收标准\*\*:`),
			IdiomTraceRef:   regexp.MustCompile(`(?i)需求\s*\d+\.\d+|Requirements?\s*\d+\.\d+`),
			IdiomDiagram:    regexp.MustCompile("```mermaid|```plantuml|架构图|设计图|流程图"),
			IdiomInterface:  regexp.MustCompile(`接口定义|API\s*设计|数据结构|参数说明`),
		},
		vocab: map[Vocabulary]vocabulary{
			VocabNFR:        {terms: []string{"性能", "安全", "可用性", "可维护性", "兼容性"}},
			VocabTechnology: {terms: []string{"技术选型", "技术栈", "框架选择", "数据库", "API", "协议"}},
			VocabNFRDesign:  {terms: []string{"性能设计", "安全设计", "可扩展性", "容错机制", "监控"}},
			VocabErrors:     {terms: []string{"容错机制"}},
		},
	},
}

// LocaleFor returns the predicate set for lang. Unknown tags fall back to zh,
// matching DetectLanguage's default.
func LocaleFor(lang Language) Locale {
	if p, ok := locales[lang]; ok {
		return p
	}
	return locales[LanguageZH]
}

func (p *patternSet) Language() Language { return p.lang }

func (p *patternSet) HasMarker(text string, m Marker) bool {
	rule, ok := p.markers[m]
	if !ok {
		return false
	}
	if rule.fold {
		text = strings.ToLower(text)
	}
	for _, n := range rule.needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func (p *patternSet) FindMarker(text string, m Marker) (Heading, Span, bool) {
	rule, ok := p.markers[m]
	if !ok {
		return Heading{}, Span{}, false
	}
	return FindSection(text, func(h Heading) bool {
		title := h.Title
		if rule.fold {
			title = strings.ToLower(title)
		}
		for _, n := range rule.needles {
			hashes := len(n) - len(strings.TrimLeft(n, "#"))
			if hashes > 0 && h.Level != hashes {
				continue
			}
			if strings.Contains(title, strings.TrimSpace(n[hashes:])) {
				return true
			}
		}
		return false
	})
}

func (p *patternSet) CountIdiom(text string, id Idiom) int {
	re, ok := p.idioms[id]
	if !ok {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

func (p *patternSet) IdiomLines(text string, id Idiom) []int {
	re, ok := p.idioms[id]
	if !ok {
		return nil
	}
	var out []int
	last := -1
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start := LineStart(text, loc[0])
		if start != last {
			out = append(out, start)
			last = start
		}
	}
	return out
}

func (p *patternSet) Terms(v Vocabulary) []string {
	return append([]string(nil), p.vocab[v].terms...)
}

func (p *patternSet) MissingTerms(text string, v Vocabulary) []string {
	voc := p.vocab[v]
	if voc.fold {
		text = strings.ToLower(text)
	}
	var missing []string
	for _, t := range voc.terms {
		needle := t
		if voc.fold {
			needle = strings.ToLower(t)
		}
		if !strings.Contains(text, needle) {
			missing = append(missing, t)
		}
	}
	return missing
}

func (p *patternSet) Label(m Marker) string {
	if rule, ok := p.markers[m]; ok {
		return rule.label
	}
	return string(m)
}
