package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/template"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebIDE/backend/internal/shared/id"
)

// DefaultSourceName is the name the embedded sample project is registered under.
const DefaultSourceName = "default"

// Recorder receives workspace metrics. monitoring.Metrics implements it.
type Recorder interface {
	IncWorkspacesCreated()
	SetWorkspacesActive(count int)
	RecordCommand(command, outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) IncWorkspacesCreated()                       {}
func (nopRecorder) SetWorkspacesActive(int)                     {}
func (nopRecorder) RecordCommand(string, string, time.Duration) {}

// Options configures a Manager.
type Options struct {
	// MaxSessions caps live workspaces; zero means unlimited.
	MaxSessions int
	// MaxContentBytes caps the body of a single edit; zero means unlimited.
	MaxContentBytes int64
	// Sources are the named templates workspaces can be created from. The
	// embedded sample project is always available as "default".
	Sources map[string]template.Source
	// DefaultSource is used when Create is called without a name.
	DefaultSource string
	Logger        *logging.Logger
	Metrics       Recorder
}

// Stats summarises the manager.
type Stats struct {
	Active      int      `json:"active"`
	MaxSessions int      `json:"max_sessions"`
	Created     int64    `json:"created"`
	Templates   []string `json:"templates"`
}

// Manager owns the live workspaces.
type Manager struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	created    int64

	sources       map[string]template.Source
	defaultSource string
	maxSessions   int
	maxContent    int64
	log           *logging.Logger
	metrics       Recorder
}

// NewManager creates a manager.
func NewManager(opts Options) *Manager {
	sources := map[string]template.Source{DefaultSourceName: template.DefaultSource()}
	for name, src := range opts.Sources {
		sources[name] = src
	}

	def := opts.DefaultSource
	if def == "" {
		def = DefaultSourceName
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	var metrics Recorder = nopRecorder{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}

	return &Manager{
		workspaces:    make(map[string]*Workspace),
		sources:       sources,
		defaultSource: def,
		maxSessions:   opts.MaxSessions,
		maxContent:    opts.MaxContentBytes,
		log:           log.Named("session"),
		metrics:       metrics,
	}
}

// Templates returns the registered source names, sorted.
func (m *Manager) Templates() []string {
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create builds a new workspace from the named template source, or from
// the default source when name is empty. Paths listed in the template's
// expanded set are expanded and its open list is opened in order.
func (m *Manager) Create(ctx context.Context, name string) (*Workspace, error) {
	if name == "" {
		name = m.defaultSource
	}
	src, ok := m.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	if m.atLimit() {
		return nil, fmt.Errorf("%w: %d live", ErrTooManyWorkspaces, m.maxSessions)
	}

	tmpl, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", src.Name(), err)
	}
	sess, err := build(tmpl)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.workspaces) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %d live", ErrTooManyWorkspaces, m.maxSessions)
	}
	wsID := id.NewWorkspaceID().String()
	w := &Workspace{
		id:         wsID,
		name:       tmpl.Name,
		source:     src,
		createdAt:  time.Now(),
		session:    sess,
		maxContent: m.maxContent,
		log:        m.log.Workspace(wsID),
		metrics:    m.metrics,
	}
	m.workspaces[wsID] = w
	m.created++
	active := len(m.workspaces)
	m.mu.Unlock()

	m.metrics.IncWorkspacesCreated()
	m.metrics.SetWorkspacesActive(active)
	w.log.Info("workspace created",
		zap.String("template", name),
		zap.Int("files", len(tmpl.Files)),
		zap.Int("active", active))
	return w, nil
}

func (m *Manager) atLimit() bool {
	if m.maxSessions <= 0 {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces) >= m.maxSessions
}

// build turns a template into a session with its initial state applied.
func build(tmpl *template.Template) (*workspace.Session, error) {
	roots, err := tmpl.Roots()
	if err != nil {
		return nil, err
	}
	tree, err := workspace.NewTree(roots)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", template.ErrInvalidTemplate, err)
	}
	sess := workspace.New(tree, tmpl.Seed())

	for _, p := range tmpl.Expanded {
		p = "/" + strings.Trim(p, "/")
		if sess.IsExpanded(p) {
			continue
		}
		if err := sess.ToggleFolder(p); err != nil {
			return nil, fmt.Errorf("%w: expanded: %v", template.ErrInvalidTemplate, err)
		}
	}
	for _, p := range tmpl.Open {
		if err := sess.SelectFile("/" + strings.Trim(p, "/")); err != nil {
			return nil, fmt.Errorf("%w: open: %v", template.ErrInvalidTemplate, err)
		}
	}
	return sess, nil
}

// Get returns the workspace with the given id.
func (m *Manager) Get(wsID string) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workspaces[wsID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, wsID)
	}
	return w, nil
}

// Delete removes a workspace and closes its subscriptions.
func (m *Manager) Delete(wsID string) error {
	m.mu.Lock()
	w, ok := m.workspaces[wsID]
	if ok {
		delete(m.workspaces, wsID)
	}
	active := len(m.workspaces)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, wsID)
	}
	w.close()
	m.metrics.SetWorkspacesActive(active)
	w.log.Info("workspace deleted", zap.Int("active", active))
	return nil
}

// List returns all workspaces, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	all := make([]*Workspace, 0, len(m.workspaces))
	for _, w := range m.workspaces {
		all = append(all, w)
	}
	m.mu.RUnlock()

	// ULID ids sort by creation time.
	slices.SortFunc(all, func(a, b *Workspace) int { return strings.Compare(a.id, b.id) })

	infos := make([]Info, 0, len(all))
	for _, w := range all {
		infos = append(infos, w.Info())
	}
	return infos
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// Stats returns manager counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Active:      len(m.workspaces),
		MaxSessions: m.maxSessions,
		Created:     m.created,
		Templates:   m.Templates(),
	}
}

// Close drops every workspace. Used on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.workspaces
	m.workspaces = make(map[string]*Workspace)
	m.mu.Unlock()

	for _, w := range all {
		w.close()
	}
	m.metrics.SetWorkspacesActive(0)
	m.log.Info("all workspaces closed", zap.Int("count", len(all)))
}
