package hf

import (
	"fmt"
	"strings"
)

// styleInstructions phrase the ask for each supported summary style.
var styleInstructions = map[string]string{
	"concise":  "Write a concise summary in 2-3 sentences capturing the essence of the text.",
	"detailed": "Write a detailed summary covering the main themes, plot points, and notable characters.",
	"academic": "Write an academic summary analyzing the themes, structure, and literary significance of the text.",
	"simple":   "Write a simple summary in plain language that a young reader could follow.",
}

// languageNames spell out the supported output languages for the prompt.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
}

// Styles lists the supported summary styles.
func Styles() []string {
	return []string{"concise", "detailed", "academic", "simple"}
}

// Languages lists the two-letter codes with both a prompt form and a
// text-to-speech voice.
func Languages() []string {
	return []string{"en", "es", "fr", "de", "it", "pt"}
}

// SupportedStyle reports whether style has a prompt template.
func SupportedStyle(style string) bool {
	_, ok := styleInstructions[strings.ToLower(strings.TrimSpace(style))]
	return ok
}

// SupportedLanguage reports whether the two-letter code has a prompt form.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// SummaryPrompt builds an instruction-format prompt for Mistral-style
// instruct models.
func SummaryPrompt(title, text, style, language string) string {
	instruction := styleInstructions[strings.ToLower(strings.TrimSpace(style))]
	if instruction == "" {
		instruction = styleInstructions["concise"]
	}
	langName := languageNames[strings.ToLower(strings.TrimSpace(language))]
	if langName == "" {
		langName = "English"
	}

	var b strings.Builder
	b.WriteString("[INST] ")
	b.WriteString(instruction)
	fmt.Fprintf(&b, " Respond in %s.", langName)
	if title = strings.TrimSpace(title); title != "" {
		fmt.Fprintf(&b, "\n\nTitle: %s", title)
	}
	fmt.Fprintf(&b, "\n\nText:\n%s [/INST]", strings.TrimSpace(text))
	return b.String()
}
