package ui

import (
	"net/http"

	"infinite-experiment/skyboard/internal/dashboard"
)

// DashboardHandler renders the KPI panel and the charts
func (h *UIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	h.openPage(w, r, PageDashboard, "dashboard.html", "Dashboard")
}

// KPIsHandler renders a page carrying only the KPI panel
func (h *UIHandler) KPIsHandler(w http.ResponseWriter, r *http.Request) {
	h.openPage(w, r, PageKPIs, "kpis.html", "Indicadores")
}

// ChartsHandler renders a page carrying only the charts
func (h *UIHandler) ChartsHandler(w http.ResponseWriter, r *http.Request) {
	h.openPage(w, r, PageCharts, "charts.html", "Gráficos")
}

// RefreshDashboardHandler reruns every dashboard widget and returns the widgets fragment
func (h *UIHandler) RefreshDashboardHandler(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r, PageDashboard)
	if !ok {
		return
	}

	ws.Lock()
	report := ws.Page.Refresher.RefreshAll(r.Context(), dashboard.TriggerLoad)
	data := h.pageData(r, ws, "Dashboard")
	ws.Unlock()

	logReport(r, report)
	_ = RenderPartial(w, "widgets", data)
}
