package template

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidTemplate is returned when a template cannot describe a project.
var ErrInvalidTemplate = errors.New("invalid template")

// Format is the encoding of a template file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// File is one file of a template and its seed body.
type File struct {
	Path    string `json:"path" yaml:"path" toml:"path"`
	Content string `json:"content" yaml:"content" toml:"content"`
}

// Template is a static project description: the files of the tree, any
// empty folders, and the workspace state to start from.
type Template struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Files    []File   `json:"files" yaml:"files" toml:"files"`
	Folders  []string `json:"folders,omitempty" yaml:"folders,omitempty" toml:"folders,omitempty"`
	Open     []string `json:"open,omitempty" yaml:"open,omitempty" toml:"open,omitempty"`
	Expanded []string `json:"expanded,omitempty" yaml:"expanded,omitempty" toml:"expanded,omitempty"`
}

// Default returns the built-in sample project.
func Default() *Template {
	t, err := Decode(defaultYAML, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded template: %v", err))
	}
	return t
}

// FormatOf guesses the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unsupported template extension %q", ErrInvalidTemplate, filepath.Ext(path))
}

// Decode parses a template in the given format and validates it.
func Decode(data []byte, format Format) (*Template, error) {
	var t Template
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &t)
	case FormatTOML:
		err = toml.Unmarshal(data, &t)
	case FormatJSON:
		err = sonic.Unmarshal(data, &t)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidTemplate, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidTemplate, format, err)
	}
	if _, err := t.Roots(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads and decodes a template file.
func LoadFile(path string) (*Template, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Decode(data, format)
}

// Seed returns a seed provider over the template's file bodies.
func (t *Template) Seed() workspace.SeedFunc {
	bodies := make(map[string]string, len(t.Files))
	for _, f := range t.Files {
		bodies[clean(f.Path)] = f.Content
	}
	return func(path string) string {
		return bodies[path]
	}
}

// Roots builds the project tree nodes. Intermediate folders are created
// from file paths; siblings keep the order of first appearance.
func (t *Template) Roots() ([]*workspace.FileNode, error) {
	b := &rootsBuilder{nodes: map[string]*workspace.FileNode{}}

	for _, dir := range t.Folders {
		if _, err := b.folder(clean(dir)); err != nil {
			return nil, err
		}
	}
	for _, f := range t.Files {
		if err := b.file(clean(f.Path)); err != nil {
			return nil, err
		}
	}
	return b.roots, nil
}

func clean(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}

func parentOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return workspace.RootPath
	}
	return path[:idx]
}

type rootsBuilder struct {
	roots []*workspace.FileNode
	nodes map[string]*workspace.FileNode
}

func (b *rootsBuilder) attach(n *workspace.FileNode) error {
	parent := parentOf(n.Path)
	if parent == workspace.RootPath {
		b.roots = append(b.roots, n)
		return nil
	}
	p, err := b.folder(parent)
	if err != nil {
		return err
	}
	p.Children = append(p.Children, n)
	return nil
}

func (b *rootsBuilder) folder(path string) (*workspace.FileNode, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty folder path", ErrInvalidTemplate)
	}
	if n, ok := b.nodes[path]; ok {
		if !n.IsFolder() {
			return nil, fmt.Errorf("%w: %s is both a file and a folder", ErrInvalidTemplate, path)
		}
		return n, nil
	}
	n := &workspace.FileNode{Name: workspace.DisplayName(path), Path: path, Kind: workspace.KindFolder}
	b.nodes[path] = n
	if err := b.attach(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (b *rootsBuilder) file(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty file path", ErrInvalidTemplate)
	}
	if _, ok := b.nodes[path]; ok {
		return fmt.Errorf("%w: duplicate path %s", ErrInvalidTemplate, path)
	}
	n := &workspace.FileNode{Name: workspace.DisplayName(path), Path: path, Kind: workspace.KindFile}
	b.nodes[path] = n
	return b.attach(n)
}
