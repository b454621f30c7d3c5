package template

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// DefaultIgnore lists the patterns skipped by ImportDir when none are given.
var DefaultIgnore = []string{"**/node_modules/**", "**/.git/**"}

// ImportOptions controls ImportDir.
type ImportOptions struct {
	Ignore       []string
	MaxFileBytes int64
}

// Skipped records a file left out of an import and why.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ImportDir builds a template from a directory on disk. Binary files,
// files that are not UTF-8, and files over the size limit are skipped.
// Siblings are ordered folders first, then by case-insensitive name.
func ImportDir(ctx context.Context, root string, opts ImportOptions) (*Template, []Skipped, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("import %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidTemplate, root)
	}

	ignore := opts.Ignore
	if ignore == nil {
		ignore = DefaultIgnore
	}
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, nil, fmt.Errorf("bad ignore pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}

	var (
		mu      sync.Mutex
		files   []File
		dirs    []string
		skipped []Skipped
	)
	skip := func(rel, reason string) {
		mu.Lock()
		skipped = append(skipped, Skipped{Path: rel, Reason: reason})
		mu.Unlock()
	}

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if ignored(ignore, rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			mu.Lock()
			dirs = append(dirs, "/"+rel)
			mu.Unlock()
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			skip(rel, err.Error())
			return nil
		}
		if opts.MaxFileBytes > 0 && fi.Size() > opts.MaxFileBytes {
			skip(rel, fmt.Sprintf("larger than %d bytes", opts.MaxFileBytes))
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			skip(rel, err.Error())
			return nil
		}
		if reason, ok := textual(data); !ok {
			skip(rel, reason)
			return nil
		}

		mu.Lock()
		files = append(files, File{Path: "/" + rel, Content: string(data)})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.SortFunc(dirs, func(a, b string) int { return comparePaths(a, b, true) })
	slices.SortFunc(files, func(a, b File) int { return comparePaths(a.Path, b.Path, false) })
	slices.SortFunc(skipped, func(a, b Skipped) int { return strings.Compare(a.Path, b.Path) })

	t := &Template{
		Name:    filepath.Base(root),
		Files:   files,
		Folders: dirs,
	}
	if _, err := t.Roots(); err != nil {
		return nil, nil, err
	}
	return t, skipped, nil
}

// ignored reports whether rel matches a pattern. A folder also matches a
// pattern of the form "x/**" when it matches "x" itself.
func ignored(patterns []string, rel string, dir bool) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if dir && strings.HasSuffix(p, "/**") {
			if ok, _ := doublestar.Match(strings.TrimSuffix(p, "/**"), rel); ok {
				return true
			}
		}
	}
	return false
}

// textual reports whether data is UTF-8 text, and otherwise why not.
func textual(data []byte) (string, bool) {
	isText := false
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			isText = true
			break
		}
	}
	if !isText {
		return "binary content (" + mimetype.Detect(data).String() + ")", false
	}
	if !utf8.Valid(data) {
		charset := "unknown"
		if res, err := chardet.NewTextDetector().DetectBest(data); err == nil {
			charset = res.Charset
		}
		return "not UTF-8 (detected " + charset + ")", false
	}
	return "", true
}

// comparePaths orders slash paths segment by segment: at the first
// difference, folders sort before files, then names compare
// case-insensitively. leafDir says whether the last segment of each path
// is a folder.
func comparePaths(a, b string, leafDir bool) int {
	as := strings.Split(strings.TrimPrefix(a, "/"), "/")
	bs := strings.Split(strings.TrimPrefix(b, "/"), "/")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		aDir, bDir := leafDir || i < len(as)-1, leafDir || i < len(bs)-1
		if aDir != bDir {
			if aDir {
				return -1
			}
			return 1
		}
		if c := strings.Compare(strings.ToLower(as[i]), strings.ToLower(bs[i])); c != 0 {
			return c
		}
		return strings.Compare(as[i], bs[i])
	}
	return len(as) - len(bs)
}
