package mutation

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

type reportLabels struct {
	title, applied, failed, skipped, appliedList, failedList string
}

var reportText = map[document.Language]reportLabels{
	document.LanguageEN: {
		title:       "### Modification Report",
		applied:     "- Successfully applied: %d improvements",
		failed:      "- Failed: %d improvements",
		skipped:     "- Already satisfied: %d improvements",
		appliedList: "#### Applied Improvements:",
		failedList:  "#### Failed Improvements:",
	},
	document.LanguageZH: {
		title:       "### 修改报告",
		applied:     "- 成功应用: %d 项改进",
		failed:      "- 失败: %d 项改进",
		skipped:     "- 已满足: %d 项改进",
		appliedList: "#### 已应用的改进:",
		failedList:  "#### 失败的改进:",
	},
}

// RenderReport summarizes a batch in the result's locale.
func RenderReport(r Result) string {
	l, ok := reportText[r.Language]
	if !ok {
		l = reportText[document.LanguageZH]
	}
	var b strings.Builder
	b.WriteString(l.title + "\n\n")
	fmt.Fprintf(&b, l.applied+"\n", len(r.Applied))
	fmt.Fprintf(&b, l.failed+"\n", len(r.Failed))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, l.skipped+"\n", len(r.Skipped))
	}
	if len(r.Applied) > 0 {
		b.WriteString("\n" + l.appliedList + "\n")
		for _, imp := range r.Applied {
			fmt.Fprintf(&b, "- %s\n", imp.Description)
		}
	}
	if len(r.Failed) > 0 {
		b.WriteString("\n" + l.failedList + "\n")
		for _, f := range r.Failed {
			fmt.Fprintf(&b, "- %s: %v\n", f.Improvement.Description, f.Err)
		}
	}
	return b.String()
}
