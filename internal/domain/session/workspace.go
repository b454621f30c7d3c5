package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/template"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/monitoring"
)

// Info describes a workspace in listings.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	OpenTabs  int       `json:"open_tabs"`
	ActiveTab string    `json:"active_tab"`
	Modified  int       `json:"modified"`
}

// Workspace is one live session registered with a Manager.
type Workspace struct {
	id        string
	name      string
	source    template.Source
	createdAt time.Time
	session   *workspace.Session

	maxContent int64
	log        *logging.Logger
	metrics    Recorder

	// applyMu orders mutations so each caller's snapshot is the state its
	// own command produced.
	applyMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
	closed bool
}

func (w *Workspace) ID() string { return w.id }

func (w *Workspace) Name() string { return w.name }

func (w *Workspace) CreatedAt() time.Time { return w.createdAt }

// Apply runs cmd and returns the snapshot it produced. Subscribers are
// notified after every successful command.
func (w *Workspace) Apply(cmd Command) (workspace.Snapshot, error) {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	timer := monitoring.NewTimer(w.metrics, string(cmd.Type))
	err := cmd.apply(w.session, w.maxContent)
	outcome := Outcome(err)
	timer.Stop(outcome)

	if err != nil {
		w.log.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.String("path", cmd.Path),
			zap.String("outcome", outcome),
			zap.Error(err))
		return workspace.Snapshot{}, err
	}

	snap := w.session.Snapshot()
	w.notify()
	return snap, nil
}

// Snapshot returns the current view model.
func (w *Workspace) Snapshot() workspace.Snapshot {
	return w.session.Snapshot()
}

// Find returns file paths matching a doublestar pattern.
func (w *Workspace) Find(pattern string) ([]string, error) {
	return w.session.Find(pattern)
}

// Stats returns counters for the underlying session.
func (w *Workspace) Stats() workspace.Stats {
	return w.session.Stats()
}

// Info summarises the workspace.
func (w *Workspace) Info() Info {
	st := w.session.Stats()
	return Info{
		ID:        w.id,
		Name:      w.name,
		Source:    w.source.Name(),
		CreatedAt: w.createdAt,
		OpenTabs:  st.OpenTabs,
		ActiveTab: st.ActiveTab,
		Modified:  st.Modified,
	}
}

// Refresh reloads the tree from the workspace's template source. Edited
// content is kept.
func (w *Workspace) Refresh(ctx context.Context) (workspace.Snapshot, error) {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	timer := monitoring.NewTimer(w.metrics, "refresh")
	tmpl, err := w.source.Load(ctx)
	if err == nil {
		var roots []*workspace.FileNode
		if roots, err = tmpl.Roots(); err == nil {
			err = w.session.Refresh(roots, tmpl.Seed())
		}
	}
	timer.Stop(Outcome(err))
	if err != nil {
		w.log.Warn("refresh failed", zap.String("source", w.source.Name()), zap.Error(err))
		return workspace.Snapshot{}, err
	}

	w.log.Info("workspace refreshed", zap.String("source", w.source.Name()))
	snap := w.session.Snapshot()
	w.notify()
	return snap, nil
}

// Subscribe returns a channel that receives a value after each change.
// Changes are coalesced: a slow reader sees one pending signal. The
// channel is closed when the workspace is deleted; cancel releases it.
func (w *Workspace) Subscribe() (<-chan struct{}, func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()

	ch := make(chan struct{}, 1)
	if w.closed {
		close(ch)
		return ch, func() {}
	}
	if w.subs == nil {
		w.subs = make(map[int]chan struct{})
	}
	id := w.nextID
	w.nextID++
	w.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.subMu.Lock()
			defer w.subMu.Unlock()
			if c, ok := w.subs[id]; ok {
				delete(w.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (w *Workspace) Subscribers() int {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	return len(w.subs)
}

func (w *Workspace) notify() {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (w *Workspace) close() {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
}
