package prompt

import (
	"regexp"
	"strings"

	t "perspectives/internal/types"
)

// Template is one few-shot prompt file.
type Template struct {
	Shot   t.ShotCount
	Method t.Method
	Path   string
	Body   string
}

// rePlaceholder matches {question}, {{question}} and {{ .Question }}.
var rePlaceholder = regexp.MustCompile(`\{\{\s*\.?[Qq]uestion\s*\}\}|\{[Qq]uestion\}`)

// HasPlaceholder reports whether the body names where the question goes.
func (tpl Template) HasPlaceholder() bool {
	return rePlaceholder.MatchString(tpl.Body)
}

// Render substitutes question into the template. Bodies without a
// placeholder are pure example blocks; the question and the method's
// instructions are appended after them.
func (tpl Template) Render(question string) string {
	question = strings.TrimSpace(question)
	if tpl.HasPlaceholder() {
		return rePlaceholder.ReplaceAllLiteralString(tpl.Body, question)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(tpl.Body, "\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(instructions(tpl.Method))
	return b.String()
}

func instructions(method t.Method) string {
	var b strings.Builder
	b.WriteString("Tell me 10 diverse perspectives about this question from different people. For each perspective, provide:\n")
	b.WriteString("- Stance: a clear position or approach to answer the question\n")
	if method.RequiresCriteria() {
		b.WriteString("- Criteria: one-word or one-phrase criteria that are important for their perspective\n")
	}
	b.WriteString("- Reason: an explanation of their reasoning\n\n")
	b.WriteString("Output the response in the same format as the examples above, with perspectives numbered 1-10.")
	return b.String()
}
