package ui

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/metrics"
)

// PageKind selects which regions a page renders
type PageKind string

const (
	PageDashboard PageKind = "dashboard"
	PageKPIs      PageKind = "kpis"
	PageFlights   PageKind = "flights"
	PageCharts    PageKind = "charts"
)

// Workspace is one session's live page. Handlers hold its lock while touching it.
type Workspace struct {
	sync.Mutex
	Kind      PageKind
	SessionID string
	Page      *dashboard.Page
}

// NotifierFactory returns the notifier of a session
type NotifierFactory func(sessionID string) dashboard.Notifier

// WorkspaceStore keeps workspaces per session and page and tears them down on eviction
type WorkspaceStore struct {
	items    *cache.Cache
	api      dashboard.FlightsAPI
	renderer dashboard.ChartRenderer
	notifier NotifierFactory
	metrics  *metrics.MetricsRegistry
	loc      *time.Location

	// serializes open/replace so one key never holds two live pages
	mu sync.Mutex
}

func NewWorkspaceStore(
	ttl time.Duration,
	api dashboard.FlightsAPI,
	renderer dashboard.ChartRenderer,
	notifier NotifierFactory,
	metricsReg *metrics.MetricsRegistry,
	loc *time.Location,
) *WorkspaceStore {
	s := &WorkspaceStore{
		items:    cache.New(ttl, ttl/2),
		api:      api,
		renderer: renderer,
		notifier: notifier,
		metrics:  metricsReg,
		loc:      loc,
	}
	s.items.OnEvicted(s.evicted)
	return s
}

func workspaceKey(sessionID string, kind PageKind) string {
	return sessionID + ":" + string(kind)
}

// Open builds a fresh workspace, replacing and closing any previous one for the same page
func (s *WorkspaceStore) Open(sessionID string, kind PageKind, theme constants.Theme) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.openLocked(sessionID, kind, theme)
}

func (s *WorkspaceStore) openLocked(sessionID string, kind PageKind, theme constants.Theme) *Workspace {
	key := workspaceKey(sessionID, kind)
	// Delete runs the eviction callback for a previous page, expired or not
	s.items.Delete(key)

	ws := &Workspace{
		Kind:      kind,
		SessionID: sessionID,
		Page:      dashboard.NewPage(s.viewFor(sessionID, kind, theme), s.api, s.renderer, s.metrics),
	}
	s.items.SetDefault(key, ws)
	if s.metrics != nil {
		s.metrics.WorkspacesActive.Inc()
	}
	return ws
}

// Get returns the live workspace, opening one when it expired or never existed
func (s *WorkspaceStore) Get(sessionID string, kind PageKind, theme constants.Theme) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := workspaceKey(sessionID, kind)
	if v, found := s.items.Get(key); found {
		// Get does not slide the expiry, so touch it
		s.items.SetDefault(key, v)
		return v.(*Workspace), false
	}
	return s.openLocked(sessionID, kind, theme), true
}

// Len returns the number of live workspaces
func (s *WorkspaceStore) Len() int {
	return s.items.ItemCount()
}

// Close tears down every workspace
func (s *WorkspaceStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.items.Items() {
		s.items.Delete(key)
	}
}

func (s *WorkspaceStore) evicted(key string, v interface{}) {
	ws, ok := v.(*Workspace)
	if !ok {
		return
	}
	ws.Lock()
	ws.Page.Close()
	ws.Unlock()

	if s.metrics != nil {
		s.metrics.WorkspacesActive.Dec()
	}
	logging.Debug("Workspace closed", "key", key)
}

func (s *WorkspaceStore) viewFor(sessionID string, kind PageKind, theme constants.Theme) *dashboard.View {
	view := &dashboard.View{
		Theme:    theme,
		Location: s.loc,
	}
	if s.notifier != nil {
		view.Notifier = s.notifier(sessionID)
	}

	switch kind {
	case PageDashboard:
		view.KPIs = dashboard.NewKPIPanel()
		view.Charts = dashboard.NewChartAnchors()
	case PageKPIs:
		view.KPIs = dashboard.NewKPIPanel()
	case PageFlights:
		view.Table = dashboard.NewTableAnchor("flightsTable")
		view.Form = dashboard.NewFormModal()
	case PageCharts:
		view.Charts = dashboard.NewChartAnchors()
	}
	return view
}
