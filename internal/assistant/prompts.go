package assistant

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts is the wording used to talk to the completion service in one
// language.
type Prompts struct {
	ChatUserPrefix      string `yaml:"chat_user_prefix"`
	ChatErrorPrefix     string `yaml:"chat_error_prefix"`
	FreeTextSystem      string `yaml:"free_text_system"`
	AnalysisSystem      string `yaml:"analysis_system"`
	AnalysisUserPrefix  string `yaml:"analysis_user_prefix"`
	AnalysisErrorPrefix string `yaml:"analysis_error_prefix"`
}

// Catalog maps a language code to its prompts.
type Catalog map[string]Prompts

// LoadPrompts parses the embedded prompt catalog.
func LoadPrompts() (Catalog, error) {
	return ParsePrompts(promptsYAML)
}

// ParsePrompts parses a YAML prompt catalog. An English entry is required
// because it is the fallback for every other language.
func ParsePrompts(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if _, ok := c["en"]; !ok {
		return nil, fmt.Errorf("parse prompts: missing %q entry", "en")
	}
	return c, nil
}

// For returns the prompts for lang, falling back to English.
func (c Catalog) For(lang string) Prompts {
	if p, ok := c[strings.ToLower(lang)]; ok {
		return p
	}
	return c["en"]
}

// ChatPrompt builds the prompt for a free chat message.
func (p Prompts) ChatPrompt(message string) Prompt {
	return Prompt{User: p.ChatUserPrefix + message}
}

// FreeTextPrompt builds the prompt for a free-text health question.
func (p Prompts) FreeTextPrompt(text string) Prompt {
	return Prompt{System: p.FreeTextSystem, User: text}
}

// AnalysisPrompt builds the prompt for a structured health summary.
func (p Prompts) AnalysisPrompt(summary string) Prompt {
	return Prompt{System: p.AnalysisSystem, User: p.AnalysisUserPrefix + summary}
}
