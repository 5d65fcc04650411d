package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		filename     string
		wantDocType  string
		wantLanguage string
	}{
		{
			name:         "shebang python",
			content:      "#!/usr/bin/python3\nprint('hi')",
			wantDocType:  DocTypeSourceCode,
			wantLanguage: "python",
		},
		{
			name:         "shebang env node",
			content:      "#!/usr/bin/env node\nconsole.log('hi')",
			wantDocType:  DocTypeSourceCode,
			wantLanguage: "javascript",
		},
		{
			name:         "dockerfile filename beats content",
			content:      "# comment only",
			filename:     "Dockerfile",
			wantDocType:  DocTypeSourceCode,
			wantLanguage: "dockerfile",
		},
		{
			name:         "dockerfile filename with suffix",
			content:      "FROM alpine",
			filename:     "Dockerfile.prod",
			wantDocType:  DocTypeSourceCode,
			wantLanguage: "dockerfile",
		},
		{
			name:         "go extension",
			content:      "package main",
			filename:     "main.go",
			wantDocType:  DocTypeSourceCode,
			wantLanguage: "go",
		},
		{
			name:         "yaml extension",
			content:      "key: value",
			filename:     "config.yml",
			wantDocType:  DocTypeData,
			wantLanguage: "yaml",
		},
		{
			name:         "well-formed json without filename",
			content:      `{"a": [1, 2, 3]}`,
			wantDocType:  DocTypeData,
			wantLanguage: "json",
		},
		{
			name:         "html doctype",
			content:      "<!DOCTYPE html>\n<html><body></body></html>",
			wantDocType:  DocTypeHTML,
			wantLanguage: "html",
		},
		{
			name:         "dockerfile keywords without filename",
			content:      "FROM golang:1.25\nRUN go build ./...",
			wantDocType:  DocTypeSourceCode,
			wantLanguage: "dockerfile",
		},
		{
			name:         "markdown heading",
			content:      "# Title\n\nSome prose.",
			wantDocType:  DocTypeMarkdown,
			wantLanguage: "markdown",
		},
		{
			name:         "markdown list",
			content:      "- first\n- second",
			wantDocType:  DocTypeMarkdown,
			wantLanguage: "markdown",
		},
		{
			name:         "yaml key lines",
			content:      "host: localhost\nport: 8080",
			wantDocType:  DocTypeData,
			wantLanguage: "yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.content, tt.filename)
			assert.Equal(t, tt.wantDocType, got.DocType)
			assert.Equal(t, tt.wantLanguage, got.LanguageHint)
			assert.Greater(t, got.Confidence, 0.2)
			assert.NotEmpty(t, got.Primary)
		})
	}
}

func TestClassifyFallback(t *testing.T) {
	got := Classify("just a plain sentence with no structure", "")

	assert.Equal(t, DocTypePrompt, got.DocType)
	assert.Equal(t, "markdown", got.LanguageHint)
	assert.InDelta(t, 0.2, got.Confidence, 0.001)
	assert.NotEmpty(t, got.Warnings, "fallback should warn")
}

func TestClassifyUnknownShebang(t *testing.T) {
	got := Classify("#!/usr/bin/lua\nprint('hi')", "")

	assert.Equal(t, DocTypeSourceCode, got.DocType)
	assert.Equal(t, "shell", got.LanguageHint)
	assert.NotEmpty(t, got.Warnings)
}

func TestClassifyNeverFails(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\n", "{broken json"} {
		got := Classify(content, "")
		assert.NotEmpty(t, got.DocType, "content %q", content)
		assert.NotEmpty(t, got.LanguageHint, "content %q", content)
	}
}
