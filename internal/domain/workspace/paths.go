package workspace

import "strings"

// Language is the editor language tag of a file.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageJSON       Language = "json"
	LanguageCSS        Language = "css"
	LanguageHTML       Language = "html"
	LanguageMarkdown   Language = "markdown"
	LanguagePython     Language = "python"
	LanguagePlaintext  Language = "plaintext"
)

// IconKey names the icon shown next to a tree row or tab.
type IconKey string

const (
	IconFolder     IconKey = "Folder"
	IconFolderOpen IconKey = "FolderOpen"
	IconFileCode   IconKey = "FileCode"
	IconBraces     IconKey = "Braces"
	IconPalette    IconKey = "Palette"
	IconCode       IconKey = "Code2"
	IconFileText   IconKey = "FileText"
	IconFile       IconKey = "File"
)

var languageByExt = map[string]Language{
	"tsx":  LanguageTypeScript,
	"ts":   LanguageTypeScript,
	"jsx":  LanguageJavaScript,
	"js":   LanguageJavaScript,
	"json": LanguageJSON,
	"css":  LanguageCSS,
	"html": LanguageHTML,
	"md":   LanguageMarkdown,
	"py":   LanguagePython,
}

var iconByExt = map[string]IconKey{
	"tsx":  IconFileCode,
	"ts":   IconFileCode,
	"jsx":  IconFileCode,
	"js":   IconFileCode,
	"py":   IconFileCode,
	"json": IconBraces,
	"css":  IconPalette,
	"html": IconCode,
	"md":   IconFileText,
	"txt":  IconFileText,
}

var languageLabels = map[Language]string{
	LanguageTypeScript: "TypeScript",
	LanguageJavaScript: "JavaScript",
	LanguageJSON:       "JSON",
	LanguageCSS:        "CSS",
	LanguageHTML:       "HTML",
	LanguageMarkdown:   "Markdown",
	LanguagePython:     "Python",
	LanguagePlaintext:  "Plain Text",
}

// DisplayName returns the last segment of path. A path without a separator
// is returned unchanged.
func DisplayName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return path
	}
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}

// extension returns the lowercased text after the last dot of the display
// name, or "" when there is none.
func extension(path string) string {
	name := DisplayName(path)
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// LanguageOf maps a path to its language tag, falling back to plaintext.
func LanguageOf(path string) Language {
	if lang, ok := languageByExt[extension(path)]; ok {
		return lang
	}
	return LanguagePlaintext
}

// IconKeyOf returns the icon for a node. Folders depend only on expansion.
func IconKeyOf(path string, kind Kind, expanded bool) IconKey {
	if kind == KindFolder {
		if expanded {
			return IconFolderOpen
		}
		return IconFolder
	}
	if icon, ok := iconByExt[extension(path)]; ok {
		return icon
	}
	return IconFile
}

// Label returns the human readable language name.
func (l Language) Label() string {
	if label, ok := languageLabels[l]; ok {
		return label
	}
	return languageLabels[LanguagePlaintext]
}

// LanguageLabelOf returns the status bar label for a path. JSX flavours get
// a " React" suffix.
func LanguageLabelOf(path string) string {
	label := LanguageOf(path).Label()
	switch extension(path) {
	case "tsx", "jsx":
		return label + " React"
	}
	return label
}
