package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/interpret_v1.txt
	promptInterpretV1 string
	//go:embed prompts/rewrite_v1.txt
	promptRewriteV1 string
	//go:embed prompts/job_extract_v1.txt
	promptJobExtractV1 string
	//go:embed prompts/resume_parse_v1.txt
	promptResumeParseV1 string
)

const (
	PromptInterpret   = "interpret_v1"
	PromptRewrite     = "rewrite_v1"
	PromptJobExtract  = "job_extract_v1"
	PromptResumeParse = "resume_parse_v1"
)

// PromptTemplate returns the prompt template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	switch name {
	case PromptInterpret:
		return promptInterpretV1, true
	case PromptRewrite:
		return promptRewriteV1, true
	case PromptJobExtract:
		return promptJobExtractV1, true
	case PromptResumeParse:
		return promptResumeParseV1, true
	default:
		return "", false
	}
}

// RenderPrompt substitutes {{KEY}} placeholders in the named template.
func RenderPrompt(name string, values map[string]string) string {
	template, _ := PromptTemplate(name)
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
