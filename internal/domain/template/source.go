package template

import (
	"context"
)

// Source produces a template on demand. Refresh reloads a workspace from
// the same source it was created from.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Template, error)
}

type defaultSource struct{}

// DefaultSource serves the embedded sample project.
func DefaultSource() Source { return defaultSource{} }

func (defaultSource) Name() string { return "default" }

func (defaultSource) Load(context.Context) (*Template, error) {
	return Default(), nil
}

// FileSource loads a YAML, TOML or JSON template file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// DirSource imports a directory tree.
type DirSource struct {
	Root    string
	Options ImportOptions
}

func (s DirSource) Name() string { return "dir:" + s.Root }

func (s DirSource) Load(ctx context.Context) (*Template, error) {
	t, _, err := ImportDir(ctx, s.Root, s.Options)
	return t, err
}

// StaticSource always returns the same template.
type StaticSource struct {
	Template *Template
}

func (s StaticSource) Name() string { return "static:" + s.Template.Name }

func (s StaticSource) Load(context.Context) (*Template, error) {
	return s.Template, nil
}
