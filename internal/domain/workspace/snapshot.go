package workspace

import (
	"iter"
	"strings"

	"github.com/bytedance/sonic"
)

// Snapshot is a consistent read of a whole session taken at one instant.
type Snapshot struct {
	Tree          TreeView   `json:"tree"`
	OpenTabs      []string   `json:"open_tabs"`
	Tabs          []TabView  `json:"tabs"`
	ActiveTab     string     `json:"active_tab"`
	ActiveContent string     `json:"active_content"`
	Status        *StatusBar `json:"status,omitempty"`
}

// TabView is the display metadata of one open tab.
type TabView struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Language Language `json:"language"`
	Icon     IconKey  `json:"icon"`
	Active   bool     `json:"active"`
	Modified bool     `json:"modified"`
}

// StatusBar describes the active document for the status line.
type StatusBar struct {
	Language Language `json:"language"`
	Label    string   `json:"label"`
	EOL      string   `json:"eol"`
	Encoding string   `json:"encoding"`
	Lines    int      `json:"lines"`
}

// TreeRow is one visible line of the file tree.
type TreeRow struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     Kind    `json:"kind"`
	Depth    int     `json:"depth"`
	Icon     IconKey `json:"icon"`
	Expanded bool    `json:"expanded"`
	Active   bool    `json:"active"`
}

// TreeView is a lazily traversed tree bound to the expansion state of the
// moment the snapshot was taken.
type TreeView struct {
	tree     *Tree
	expanded map[string]struct{}
	active   string
}

// All yields the visible nodes and their depth.
func (v TreeView) All() iter.Seq2[*FileNode, int] {
	if v.tree == nil {
		return func(func(*FileNode, int) bool) {}
	}
	return v.tree.traverse(v.expanded)
}

// Rows yields the visible nodes with their display metadata.
func (v TreeView) Rows() iter.Seq[TreeRow] {
	return func(yield func(TreeRow) bool) {
		for n, depth := range v.All() {
			_, expanded := v.expanded[n.Path]
			expanded = expanded && n.IsFolder()
			row := TreeRow{
				Name:     n.Name,
				Path:     n.Path,
				Kind:     n.Kind,
				Depth:    depth,
				Icon:     IconKeyOf(n.Path, n.Kind, expanded),
				Expanded: expanded,
				Active:   n.Path == v.active,
			}
			if !yield(row) {
				return
			}
		}
	}
}

// MarshalJSON renders the visible rows as an array.
func (v TreeView) MarshalJSON() ([]byte, error) {
	rows := []TreeRow{}
	for row := range v.Rows() {
		rows = append(rows, row)
	}
	return sonic.Marshal(rows)
}

// Snapshot returns a consistent view of the session. Reading the active
// content may seed it, so this takes the same lock as the commands.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.tabs.ActiveTab()
	open := s.tabs.OpenTabs()

	snap := Snapshot{
		Tree: TreeView{
			tree:     s.tree,
			expanded: s.tree.frozen(),
			active:   active,
		},
		OpenTabs:  open,
		Tabs:      make([]TabView, 0, len(open)),
		ActiveTab: active,
	}

	for _, path := range open {
		snap.Tabs = append(snap.Tabs, TabView{
			Path:     path,
			Name:     DisplayName(path),
			Language: LanguageOf(path),
			Icon:     IconKeyOf(path, KindFile, false),
			Active:   path == active,
			Modified: s.content.Modified(path),
		})
	}

	if active != "" {
		snap.ActiveContent = s.activeContent(active)
		snap.Status = statusOf(active, snap.ActiveContent)
	}
	return snap
}

// activeContent reads the active tab. A tab whose file left the tree shows
// its stored text, or nothing, and is never seeded.
func (s *Session) activeContent(path string) string {
	if n, ok := s.tree.Lookup(path); ok && n.Kind == KindFile {
		return s.content.Read(path, s.seed)
	}
	if s.content.Has(path) {
		return s.content.Read(path, nil)
	}
	return ""
}

func statusOf(path, content string) *StatusBar {
	eol := "LF"
	if strings.Contains(content, "\r\n") {
		eol = "CRLF"
	}
	return &StatusBar{
		Language: LanguageOf(path),
		Label:    LanguageLabelOf(path),
		EOL:      eol,
		Encoding: "UTF-8",
		Lines:    strings.Count(content, "\n") + 1,
	}
}
