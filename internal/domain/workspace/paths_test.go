package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/src/App.tsx", "App.tsx"},
		{"/README.md", "README.md"},
		{"README.md", "README.md"},
		{"/src/components/", "components"},
		{"/", "/"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.path))
		})
	}
}

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"/src/App.tsx", LanguageTypeScript},
		{"/src/util.ts", LanguageTypeScript},
		{"/src/App.JSX", LanguageJavaScript},
		{"/src/main.js", LanguageJavaScript},
		{"/package.json", LanguageJSON},
		{"/src/styles.css", LanguageCSS},
		{"/public/index.html", LanguageHTML},
		{"/README.md", LanguageMarkdown},
		{"/scripts/build.py", LanguagePython},
		{"/notes.txt", LanguagePlaintext},
		{"/Makefile", LanguagePlaintext},
		{"/archive.tar.gz", LanguagePlaintext},
		{"/.gitignore", LanguagePlaintext},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageOf(tt.path))
		})
	}
}

func TestIconKeyOf(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		kind     Kind
		expanded bool
		want     IconKey
	}{
		{"collapsed folder", "/src", KindFolder, false, IconFolder},
		{"expanded folder", "/src", KindFolder, true, IconFolderOpen},
		{"folder with extension", "/lib.js", KindFolder, false, IconFolder},
		{"tsx", "/src/App.tsx", KindFile, false, IconFileCode},
		{"python", "/main.py", KindFile, false, IconFileCode},
		{"json", "/package.json", KindFile, false, IconBraces},
		{"css", "/src/styles.css", KindFile, false, IconPalette},
		{"html", "/public/index.html", KindFile, false, IconCode},
		{"markdown", "/README.md", KindFile, false, IconFileText},
		{"text", "/notes.TXT", KindFile, false, IconFileText},
		{"unknown", "/Dockerfile", KindFile, false, IconFile},
		{"expansion ignored for files", "/image.png", KindFile, true, IconFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IconKeyOf(tt.path, tt.kind, tt.expanded))
		})
	}
}

func TestLanguageLabelOf(t *testing.T) {
	assert.Equal(t, "TypeScript React", LanguageLabelOf("/src/App.tsx"))
	assert.Equal(t, "TypeScript", LanguageLabelOf("/src/index.ts"))
	assert.Equal(t, "JavaScript React", LanguageLabelOf("/src/App.jsx"))
	assert.Equal(t, "Markdown", LanguageLabelOf("/README.md"))
	assert.Equal(t, "Plain Text", LanguageLabelOf("/LICENSE"))
}
