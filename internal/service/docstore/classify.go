package docstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Doc types assigned by the classifier.
const (
	DocTypePrompt     = "prompt"
	DocTypeSourceCode = "source_code"
	DocTypeMarkdown   = "markdown"
	DocTypeData       = "data"
	DocTypeHTML       = "html"
)

// Classification is the result of the content heuristic. It never
// fails: when nothing matches it resolves to markdown/prompt with a low
// confidence score and an explanatory warning.
type Classification struct {
	DocType      string   `json:"doc_type"`
	LanguageHint string   `json:"language_hint"`
	Confidence   float64  `json:"confidence"`
	Primary      string   `json:"primary"` // human-readable primary-match explanation
	Warnings     []string `json:"warnings,omitempty"`
}

var shebangLanguages = map[string]string{
	"bash":   "shell",
	"sh":     "shell",
	"zsh":    "shell",
	"python": "python",
	"node":   "javascript",
	"ruby":   "ruby",
	"perl":   "perl",
}

var extensionLanguages = map[string]struct {
	docType  string
	language string
}{
	".md":         {DocTypeMarkdown, "markdown"},
	".markdown":   {DocTypeMarkdown, "markdown"},
	".go":         {DocTypeSourceCode, "go"},
	".py":         {DocTypeSourceCode, "python"},
	".sh":         {DocTypeSourceCode, "shell"},
	".js":         {DocTypeSourceCode, "javascript"},
	".ts":         {DocTypeSourceCode, "typescript"},
	".sql":        {DocTypeSourceCode, "sql"},
	".rb":         {DocTypeSourceCode, "ruby"},
	".rs":         {DocTypeSourceCode, "rust"},
	".java":       {DocTypeSourceCode, "java"},
	".c":          {DocTypeSourceCode, "c"},
	".cpp":        {DocTypeSourceCode, "cpp"},
	".json":       {DocTypeData, "json"},
	".yaml":       {DocTypeData, "yaml"},
	".yml":        {DocTypeData, "yaml"},
	".toml":       {DocTypeData, "toml"},
	".xml":        {DocTypeData, "xml"},
	".csv":        {DocTypeData, "csv"},
	".html":       {DocTypeHTML, "html"},
	".htm":        {DocTypeHTML, "html"},
	".puml":       {DocTypeMarkdown, "plantuml"},
	".plantuml":   {DocTypeMarkdown, "plantuml"},
	".dockerfile": {DocTypeSourceCode, "dockerfile"},
}

var (
	shebangRe     = regexp.MustCompile(`\A#!\s*(\S+)`)
	yamlKeyRe     = regexp.MustCompile(`(?m)^[A-Za-z0-9_.-]+:\s`)
	markdownCueRe = regexp.MustCompile("(?m)^(#{1,6}\\s|[-*+]\\s|\\d+\\.\\s|> |```)")
	dockerfileRe  = regexp.MustCompile(`(?im)^\s*(FROM|RUN|COPY|ENTRYPOINT|CMD|WORKDIR)\s`)
	htmlDoctypeRe = regexp.MustCompile(`(?i)\A\s*(<!doctype\s+html|<html)`)
)

// Classify infers doc type and language hint from raw text plus an
// optional filename. Shared by node creation, clipboard import, and
// transfer import so all three agree on any given paste.
func Classify(content, filename string) Classification {
	trimmed := strings.TrimSpace(content)

	if m := shebangRe.FindStringSubmatch(trimmed); m != nil {
		interpreter := filepath.Base(m[1])
		// "#!/usr/bin/env python" names the interpreter in the next token
		if interpreter == "env" {
			rest := strings.Fields(strings.TrimPrefix(trimmed, m[0]))
			if len(rest) > 0 {
				interpreter = filepath.Base(rest[0])
			}
		}
		interpreter = strings.TrimRightFunc(interpreter, func(r rune) bool {
			return r >= '0' && r <= '9' || r == '.'
		})
		if lang, ok := shebangLanguages[interpreter]; ok {
			return Classification{
				DocType:      DocTypeSourceCode,
				LanguageHint: lang,
				Confidence:   0.95,
				Primary:      fmt.Sprintf("shebang interpreter %q", interpreter),
			}
		}
		return Classification{
			DocType:      DocTypeSourceCode,
			LanguageHint: "shell",
			Confidence:   0.6,
			Primary:      fmt.Sprintf("unrecognized shebang %q", interpreter),
			Warnings:     []string{fmt.Sprintf("interpreter %q not in the known set; assuming shell", interpreter)},
		}
	}

	if name := strings.ToLower(filepath.Base(filename)); name == "dockerfile" ||
		strings.HasPrefix(name, "dockerfile.") {
		return Classification{
			DocType:      DocTypeSourceCode,
			LanguageHint: "dockerfile",
			Confidence:   0.95,
			Primary:      "filename matches Dockerfile",
		}
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if m, ok := extensionLanguages[ext]; ok {
			return Classification{
				DocType:      m.docType,
				LanguageHint: m.language,
				Confidence:   0.9,
				Primary:      fmt.Sprintf("file extension %q", ext),
			}
		}
	}

	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid([]byte(trimmed)) {
		return Classification{
			DocType:      DocTypeData,
			LanguageHint: "json",
			Confidence:   0.95,
			Primary:      "well-formed JSON document",
		}
	}

	if htmlDoctypeRe.MatchString(trimmed) {
		return Classification{
			DocType:      DocTypeHTML,
			LanguageHint: "html",
			Confidence:   0.9,
			Primary:      "HTML doctype or root element",
		}
	}

	if dockerfileRe.MatchString(trimmed) && strings.Contains(strings.ToUpper(trimmed), "FROM ") {
		return Classification{
			DocType:      DocTypeSourceCode,
			LanguageHint: "dockerfile",
			Confidence:   0.7,
			Primary:      "Dockerfile instruction keywords",
		}
	}

	if markdownCueRe.MatchString(trimmed) {
		return Classification{
			DocType:      DocTypeMarkdown,
			LanguageHint: "markdown",
			Confidence:   0.7,
			Primary:      "markdown heading/list/code-fence cues",
		}
	}

	// YAML last among the structured checks: bare "key: value" lines show
	// up in prose too, so this one stays low-confidence.
	if matches := yamlKeyRe.FindAllString(trimmed, -1); len(matches) >= 2 {
		return Classification{
			DocType:      DocTypeData,
			LanguageHint: "yaml",
			Confidence:   0.5,
			Primary:      fmt.Sprintf("%d top-level key: value lines", len(matches)),
			Warnings:     []string{"yaml heuristic is ambiguous for prose with colons"},
		}
	}

	return Classification{
		DocType:      DocTypePrompt,
		LanguageHint: "markdown",
		Confidence:   0.2,
		Primary:      "no heuristic matched",
		Warnings:     []string{"content did not match any classification heuristic; defaulting to markdown prompt"},
	}
}
