package ui

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"infinite-experiment/skyboard/internal/api"
	"infinite-experiment/skyboard/internal/charts"
	"infinite-experiment/skyboard/internal/common"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/middleware"
	"infinite-experiment/skyboard/internal/models/dtos"
	"infinite-experiment/skyboard/internal/models/dtos/responses"
)

const themeCookieMaxAge = 365 * 24 * time.Hour

// UIHandler manages all UI routes
type UIHandler struct {
	store  *WorkspaceStore
	flash  *common.FlashService
	charts *charts.Registry
}

// NewUIHandler creates a new UI handler
func NewUIHandler(store *WorkspaceStore, flash *common.FlashService, registry *charts.Registry) *UIHandler {
	return &UIHandler{
		store:  store,
		flash:  flash,
		charts: registry,
	}
}

// Routes mounts the UI on r
func (h *UIHandler) Routes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	r.Get("/dashboard", h.DashboardHandler)
	r.Post("/dashboard/refresh", h.RefreshDashboardHandler)
	r.Get("/dashboard/kpis", h.KPIsHandler)
	r.Get("/charts", h.ChartsHandler)

	r.Route("/flights", func(r chi.Router) {
		r.Get("/", h.FlightsHandler)
		r.Get("/table", h.FlightsTableHandler)
		r.Get("/new", h.NewFlightHandler)
		r.Post("/save", h.SaveFlightHandler)
		r.Post("/close", h.CloseFlightModalHandler)
		r.Get("/{id}/edit", h.EditFlightHandler)
		r.Post("/{id}/delete", h.DeleteFlightHandler)
	})

	r.Route("/ui", func(r chi.Router) {
		r.Post("/theme", h.SetThemeHandler)
		r.Get("/charts/{id}", h.ChartConfigHandler)
		r.Get("/notifications", h.NotificationsHandler)
		r.Post("/notifications/{id}/dismiss", h.DismissNotificationHandler)
	})
}

// SetThemeHandler handles theme changes via POST request
func (h *UIHandler) SetThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme := constants.Theme(r.FormValue("theme"))
	if theme == "" {
		theme = constants.ThemeLight
	}
	if !constants.ValidThemes[theme] {
		api.RespondWithError(w, http.StatusBadRequest, "unknown theme: "+string(theme))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.ThemeCookieName,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   int(themeCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	// plain form posts from the nav bar go back to the page they came from
	if target := r.FormValue("redirect"); !isHTMX(r) && isLocalPath(target) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	api.RespondWithSuccess(w, http.StatusOK, &responses.ThemeResponse{
		Success: true,
		Theme:   string(theme),
	})
}

// ChartConfigHandler serves the Chart.js config of a live chart instance
func (h *UIHandler) ChartConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inst, ok := h.charts.Lookup(id)
	if !ok {
		api.RespondWithError(w, http.StatusNotFound, "chart not found")
		return
	}
	cfg := inst.Config()
	api.RespondWithSuccess(w, http.StatusOK, &cfg)
}

// NotificationsHandler renders the session's pending notices
func (h *UIHandler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Notices": h.pendingNotices(r),
	}
	_ = RenderPartial(w, "notifications", data)
}

// DismissNotificationHandler removes one notice before it expires
func (h *UIHandler) DismissNotificationHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionIDFrom(r.Context())
	noticeID := chi.URLParam(r, "id")
	if err := h.flash.Dismiss(r.Context(), sessionID, noticeID); err != nil {
		requestLogger(r).Errorw("Failed to dismiss notice", "notice_id", noticeID, "error", err)
	}
	h.NotificationsHandler(w, r)
}

func (h *UIHandler) pendingNotices(r *http.Request) []dtos.Notice {
	sessionID := middleware.SessionIDFrom(r.Context())
	if sessionID == "" {
		return nil
	}
	notices, err := h.flash.Pending(r.Context(), sessionID)
	if err != nil {
		requestLogger(r).Errorw("Failed to load notices", "error", err)
		return nil
	}
	return notices
}

// openPage builds a fresh workspace, runs its initial load and renders the full page
func (h *UIHandler) openPage(w http.ResponseWriter, r *http.Request, kind PageKind, page, title string) {
	sessionID, ok := requireSession(w, r)
	if !ok {
		return
	}

	ws := h.store.Open(sessionID, kind, getThemeFromRequest(r))
	ws.Lock()
	report := ws.Page.Load(r.Context())
	data := h.pageData(r, ws, title)
	ws.Unlock()

	logReport(r, report)
	_ = RenderTemplate(w, page, data)
}

// workspace returns the live workspace of the session, loading it first when it had to be reopened
func (h *UIHandler) workspace(w http.ResponseWriter, r *http.Request, kind PageKind) (*Workspace, bool) {
	sessionID, ok := requireSession(w, r)
	if !ok {
		return nil, false
	}

	ws, created := h.store.Get(sessionID, kind, getThemeFromRequest(r))
	if created {
		ws.Lock()
		logReport(r, ws.Page.Load(r.Context()))
		ws.Unlock()
	}
	return ws, true
}

// pageData snapshots every present region. Callers hold the workspace lock.
func (h *UIHandler) pageData(r *http.Request, ws *Workspace, title string) map[string]interface{} {
	view := ws.Page.View
	data := map[string]interface{}{
		"Title":         title,
		"Active":        string(ws.Kind),
		"Theme":         view.Theme,
		"Path":          r.URL.Path,
		"PageLengths":   dashboard.PageLengths,
		"Statuses":      constants.FlightStatuses,
		"DeleteConfirm": constants.MsgDeleteConfirm,
		"TableOOB":      false,
		"NoticesOOB":    false,
	}

	if view.KPIs != nil {
		data["KPIs"] = view.KPIs.Slots()
	}
	if len(view.Charts) > 0 {
		states := make([]dashboard.ChartAnchorState, 0, len(view.Charts))
		for _, anchor := range view.Charts {
			states = append(states, anchor.Snapshot())
		}
		data["Charts"] = states
	}
	if view.Table != nil {
		snap := view.Table.Snapshot()
		if len(snap.Columns) == 0 {
			snap.Columns = dashboard.FlightColumns
		}
		data["Table"] = snap
		data["Pager"] = newPager(snap)
	}
	if view.Form != nil {
		data["Form"] = view.Form.Snapshot()
	}

	data["Notices"] = h.pendingNotices(r)
	return data
}

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := middleware.SessionIDFrom(r.Context())
	if sessionID == "" {
		http.Error(w, "missing session", http.StatusBadRequest)
		return "", false
	}
	return sessionID, true
}

func logReport(r *http.Request, report dashboard.Report) {
	for _, res := range report.Results {
		if res.Err == nil {
			continue
		}
		requestLogger(r).Warnw("Widget refresh failed",
			"widget", res.Widget,
			"trigger", report.Trigger,
			"error", res.Err,
		)
	}
}

func requestLogger(r *http.Request) *zap.SugaredLogger {
	ctx := r.Context()
	return logging.WithRequest(middleware.RequestIDFrom(ctx), middleware.SessionIDFrom(ctx), r.URL.Path)
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
