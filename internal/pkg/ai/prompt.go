package ai

import (
	"bytes"
	"text/template"

	"github.com/draftcommit/draftcommit/internal/pkg/git"
)

// DefaultSystemPrompt is the default system prompt for generating commit messages.
const DefaultSystemPrompt = `You are an expert at writing clear, specific git commit messages.

Rules:
1. Be concise and specific
2. Use imperative mood, present tense ("add" not "added")
3. The first line must stand alone as a complete summary
4. Output only the commit message, no explanations and no code fences.`

// DefaultUserPromptTemplate is the default user prompt template.
//
// The instruction set is fixed; only the diff and its statistics vary. The
// lists of added/removed functions must be omitted entirely when empty, and
// the summary line must not contain the word "summary" - the post-processor
// still strips placeholder lists from providers that ignore the rule.
const DefaultUserPromptTemplate = `Write a commit message for the staged changes below.

Requirements:
- First line: a single-line description of the change. Do not use the word "summary".
- If the diff adds named functions, follow with a section:
  Functions Added:
  - <one bullet per function name>
- If the diff removes named functions, follow with a section:
  Functions Removed:
  - <one bullet per function name>
- Omit either section entirely when it would be empty. Never write "None".

{{if .Stats.TotalFiles}}Files changed: {{.Stats.TotalFiles}}
Additions: {{.Stats.TotalAdditions}}
Deletions: {{.Stats.TotalDeletions}}
{{end}}
Diff:
{{.Diff}}`

// PromptTemplate handles prompt generation for the providers.
type PromptTemplate struct {
	SystemPrompt string
	UserPrompt   string
	tmpl         *template.Template
}

// PromptData contains the data used to render the user prompt template.
type PromptData struct {
	Diff  string
	Stats git.Stats
}

// NewPromptTemplate creates a new PromptTemplate with default prompts.
func NewPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: DefaultSystemPrompt,
		UserPrompt:   DefaultUserPromptTemplate,
	}
}

// NewPromptTemplateWithCustom creates a new PromptTemplate with custom prompts.
// If systemPrompt or userPrompt is empty, the default is used.
func NewPromptTemplateWithCustom(systemPrompt, userPrompt string) *PromptTemplate {
	pt := NewPromptTemplate()

	if systemPrompt != "" {
		pt.SystemPrompt = systemPrompt
	}
	if userPrompt != "" {
		pt.UserPrompt = userPrompt
	}

	return pt
}

// RenderUserPrompt renders the user prompt template for a request.
//
// The diff text is substituted verbatim; transport-safe encoding is left
// entirely to the JSON layer so the diff round-trips losslessly, embedded
// quotes and newlines included.
func (pt *PromptTemplate) RenderUserPrompt(req *GenerateRequest) (string, error) {
	if req.CustomPrompt != "" {
		return req.CustomPrompt, nil
	}

	if pt.tmpl == nil {
		tmpl, err := template.New("userPrompt").Parse(pt.UserPrompt)
		if err != nil {
			return "", err
		}
		pt.tmpl = tmpl
	}

	data := &PromptData{}
	if req.Diff != nil {
		data.Diff = req.Diff.Content
		data.Stats = req.Diff.Stats
	}

	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// GetSystemPrompt returns the system prompt.
func (pt *PromptTemplate) GetSystemPrompt() string {
	return pt.SystemPrompt
}
