package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tosih/enginelog/pkg/models"
)

var (
	// ErrXAxisChanged is returned when plotting into a tab whose x axis
	// differs from the new plot and replace was not requested
	ErrXAxisChanged = errors.New("x axis differs from the plot already in this tab")

	// ErrTabNotFound is returned for unknown tab ids
	ErrTabNotFound = errors.New("tab not found")

	// ErrLastTab is returned when closing the only remaining tab
	ErrLastTab = errors.New("cannot close the last tab")
)

// Tab is one plot slot
type Tab struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Spec  *models.PlotSpec `json:"spec,omitempty"`
}

// Workspace holds an ordered set of tabs. It is safe for concurrent use.
type Workspace struct {
	mu   sync.RWMutex
	tabs []*Tab
}

// New creates a workspace with a single empty tab
func New() *Workspace {
	w := &Workspace{}
	w.AddTab()
	return w
}

// AddTab appends an empty tab
func (w *Workspace) AddTab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()

	tab := &Tab{
		ID:    uuid.New().String(),
		Title: fmt.Sprintf("Plot %d", len(w.tabs)+1),
	}
	w.tabs = append(w.tabs, tab)
	return *tab
}

// CloseTab removes a tab and renumbers the rest
func (w *Workspace) CloseTab(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.index(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	if len(w.tabs) == 1 {
		return ErrLastTab
	}

	w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)
	for i, t := range w.tabs {
		t.Title = fmt.Sprintf("Plot %d", i+1)
	}
	return nil
}

// Tabs returns the tabs in display order
func (w *Workspace) Tabs() []Tab {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Tab, len(w.tabs))
	for i, t := range w.tabs {
		out[i] = *t
	}
	return out
}

// Tab returns a single tab
func (w *Workspace) Tab(id string) (Tab, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	idx := w.index(id)
	if idx < 0 {
		return Tab{}, ErrTabNotFound
	}
	return *w.tabs[idx], nil
}

// Plot puts spec into a tab. An empty tab takes it as is. A tab that
// already holds a time series on the same x axis gets the new traces
// appended: traces join the subplot with the same unit, new units become new
// subplots. A different x axis is refused with ErrXAxisChanged unless
// replace is set. XY plots always replace.
func (w *Workspace) Plot(id string, spec *models.PlotSpec, replace bool) (Tab, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.index(id)
	if idx < 0 {
		return Tab{}, ErrTabNotFound
	}
	tab := w.tabs[idx]

	switch {
	case tab.Spec == nil, replace, spec.Kind == models.XY, tab.Spec.Kind == models.XY:
		tab.Spec = spec
	case !sameXAxis(tab.Spec, spec):
		return Tab{}, ErrXAxisChanged
	default:
		tab.Spec = merge(tab.Spec, spec)
	}

	return *tab, nil
}

// Clear empties a tab
func (w *Workspace) Clear(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.index(id)
	if idx < 0 {
		return ErrTabNotFound
	}
	w.tabs[idx].Spec = nil
	return nil
}

func (w *Workspace) index(id string) int {
	for i, t := range w.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func sameXAxis(a, b *models.PlotSpec) bool {
	return a.Source == b.Source &&
		a.X.Column == b.X.Column &&
		len(a.X.Values) == len(b.X.Values)
}

// merge returns a new spec and leaves cur untouched
func merge(cur, add *models.PlotSpec) *models.PlotSpec {
	out := *cur
	out.Groups = make([]models.UnitGroup, len(cur.Groups))
	for i, g := range cur.Groups {
		g.Traces = append([]models.Trace(nil), g.Traces...)
		out.Groups[i] = g
	}

	for _, g := range add.Groups {
		gi := -1
		for i := range out.Groups {
			if out.Groups[i].Unit == g.Unit {
				gi = i
				break
			}
		}
		if gi < 0 {
			out.Groups = append(out.Groups, models.UnitGroup{Unit: g.Unit, Title: g.Title})
			gi = len(out.Groups) - 1
		}
		for _, tr := range g.Traces {
			if !hasTrace(out.Groups[gi], tr.Column) {
				out.Groups[gi].Traces = append(out.Groups[gi].Traces, tr)
				if tr.Converted {
					out.Temperature = models.Celsius
				}
			}
		}
	}

	return &out
}

func hasTrace(g models.UnitGroup, column string) bool {
	for _, tr := range g.Traces {
		if tr.Column == column {
			return true
		}
	}
	return false
}
