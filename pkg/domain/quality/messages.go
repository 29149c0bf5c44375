package quality

import "github.com/felixgeelhaar/specgate/pkg/domain/document"

type messageKey int

const (
	msgFewCriteria messageKey = iota
	msgFewStories
	msgFewAcceptance
	msgMissingNFR
	msgFewTraceRefs
	msgUnreferenced
	msgNoDiagrams
	msgNoTasks
	msgLowCompletion
)

var messages = map[document.Language]map[messageKey]string{
	document.LanguageEN: {
		msgFewCriteria:   "Few EARS-format acceptance criteria (current %d, target %d+)",
		msgFewStories:    "Few user stories (current %d, target %d+)",
		msgFewAcceptance: "Few acceptance criteria blocks (current %d, target %d+)",
		msgMissingNFR:    "Missing non-functional requirements: %s",
		msgFewTraceRefs:  "Few requirements references (current %d, target %d+)",
		msgUnreferenced:  "Requirements not referenced by the design: %s",
		msgNoDiagrams:    "Architecture/Design Diagrams",
		msgNoTasks:       "No tasks found in document",
		msgLowCompletion: "Low completion rate: %.1f%%",
	},
	document.LanguageZH: {
		msgFewCriteria:   "EARS 格式验收标准较少 (当前 %d，建议 %d+)",
		msgFewStories:    "用户故事较少 (当前 %d，建议 %d+)",
		msgFewAcceptance: "验收标准较少 (当前 %d，建议 %d+)",
		msgMissingNFR:    "缺少非功能需求: %s",
		msgFewTraceRefs:  "需求追溯较少 (当前 %d，建议 %d+)",
		msgUnreferenced:  "设计未引用的需求: %s",
		msgNoDiagrams:    "架构图/设计图",
		msgNoTasks:       "文档中未找到任务",
		msgLowCompletion: "完成率较低: %.1f%%",
	},
}

func message(lang document.Language, key messageKey) string {
	if m, ok := messages[lang]; ok {
		return m[key]
	}
	return messages[document.LanguageZH][key]
}

var descriptions = map[document.Language]map[Criterion]string{
	document.LanguageEN: {
		CriterionStructure:    "Document Structure Completeness",
		CriterionEARS:         "EARS Format Acceptance Criteria",
		CriterionStories:      "User Story Quality",
		CriterionAcceptance:   "Acceptance Criteria Completeness",
		CriterionNFR:          "Non-functional Requirements Coverage",
		CriterionConstraints:  "Constraints Description",
		CriterionTraceability: "Requirements Traceability",
		CriterionDiagrams:     "Architecture and Design Diagrams",
		CriterionTechnology:   "Technology Stack Explanation",
		CriterionNFRDesign:    "Non-functional Requirements Design",
		CriterionInterfaces:   "Interface Definition Completeness",
		CriterionCompletion:   "Task Completion Rate",
	},
	document.LanguageZH: {
		CriterionStructure:    "文档结构完整性",
		CriterionEARS:         "EARS 格式验收标准",
		CriterionStories:      "用户故事质量",
		CriterionAcceptance:   "验收标准完整性",
		CriterionNFR:          "非功能需求覆盖",
		CriterionConstraints:  "约束条件说明",
		CriterionTraceability: "需求追溯性",
		CriterionDiagrams:     "架构图和设计图",
		CriterionTechnology:   "技术选型说明",
		CriterionNFRDesign:    "非功能需求设计",
		CriterionInterfaces:   "接口定义完整性",
		CriterionCompletion:   "任务完成率",
	},
}

// Describe returns the localized human-readable name of c.
func Describe(c Criterion, lang document.Language) string {
	if d, ok := descriptions[lang][c]; ok {
		return d
	}
	return string(c)
}
