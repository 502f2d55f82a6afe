package ui

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/skyboard/internal/dashboard"
)

// FlightsHandler renders the flights table page
func (h *UIHandler) FlightsHandler(w http.ResponseWriter, r *http.Request) {
	h.openPage(w, r, PageFlights, "flights.html", "Vuelos")
}

// FlightsTableHandler applies paging, ordering and search and returns the table fragment
func (h *UIHandler) FlightsTableHandler(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r, PageFlights)
	if !ok {
		return
	}

	ws.Lock()
	current := ws.Page.View.Table.Snapshot().State
	if err := ws.Page.List.Query(r.Context(), tableStateFrom(r.URL.Query(), current)); err != nil {
		requestLogger(r).Warnw("Flights query failed", "error", err)
	}
	data := h.pageData(r, ws, "Vuelos")
	ws.Unlock()

	_ = RenderPartial(w, "table", data)
}

// NewFlightHandler opens the modal in create mode
func (h *UIHandler) NewFlightHandler(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r, PageFlights)
	if !ok {
		return
	}

	ws.Lock()
	ws.Page.Form.OpenForCreate()
	data := h.pageData(r, ws, "Vuelos")
	ws.Unlock()

	_ = RenderPartial(w, "modal", data)
}

// EditFlightHandler fires the row's edit trigger, which loads the record into the modal
func (h *UIHandler) EditFlightHandler(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r, PageFlights)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ws.Lock()
	err := dispatchRowAction(r.Context(), ws.Page, dashboard.RowAction{
		Kind:     dashboard.ActionEdit,
		RecordID: id,
	})
	if err != nil {
		// the notice is already queued, the modal keeps its previous state
		requestLogger(r).Warnw("Failed to open flight for editing", "record_id", id, "error", err)
	}
	data := h.pageData(r, ws, "Vuelos")
	ws.Unlock()

	_ = RenderPartial(w, "modal", data)
}

// CloseFlightModalHandler discards the modal contents
func (h *UIHandler) CloseFlightModalHandler(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r, PageFlights)
	if !ok {
		return
	}

	ws.Lock()
	ws.Page.Form.Close()
	data := h.pageData(r, ws, "Vuelos")
	ws.Unlock()

	_ = RenderPartial(w, "modal", data)
}

// SaveFlightHandler submits the modal. Success swaps in the closed modal plus the
// refreshed table and notices. Failure re-renders the open modal with the error.
func (h *UIHandler) SaveFlightHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ws, ok := h.workspace(w, r, PageFlights)
	if !ok {
		return
	}

	ws.Lock()
	ws.Page.Form.Restore(r.PostForm.Get("record_id"), formFieldsFrom(r))
	report, err := ws.Page.Form.Submit(r.Context())
	data := h.pageData(r, ws, "Vuelos")
	ws.Unlock()

	if err != nil {
		requestLogger(r).Warnw("Flight save failed", "error", err)
		_ = RenderPartial(w, "modal", data)
		return
	}
	if report != nil {
		logReport(r, *report)
	}

	data["TableOOB"] = true
	data["NoticesOOB"] = true
	_ = RenderPartial(w, "flights_saved", data)
}

// DeleteFlightHandler fires the row's delete trigger. The browser asks for
// confirmation before posting, and the post carries confirmed=true.
func (h *UIHandler) DeleteFlightHandler(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirmed") == "true"
	if !confirmed {
		http.Error(w, "delete not confirmed", http.StatusBadRequest)
		return
	}
	ws, ok := h.workspace(w, r, PageFlights)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ws.Lock()
	err := dispatchRowAction(r.Context(), ws.Page, dashboard.RowAction{
		Kind:     dashboard.ActionDelete,
		RecordID: id,
		Confirm:  dashboard.Confirmed,
	})
	if err != nil {
		requestLogger(r).Warnw("Flight delete failed", "record_id", id, "error", err)
	}
	data := h.pageData(r, ws, "Vuelos")
	ws.Unlock()

	data["NoticesOOB"] = true
	_ = RenderPartial(w, "flights_deleted", data)
}

// dispatchRowAction routes through the table subscription, falling back to
// the form controller when the table has no live binding
func dispatchRowAction(ctx context.Context, page *dashboard.Page, action dashboard.RowAction) error {
	err := page.View.Table.Dispatch(ctx, action)
	if !errors.Is(err, dashboard.ErrTableNotBound) {
		return err
	}
	return page.Form.HandleRowAction(ctx, action)
}

func formFieldsFrom(r *http.Request) dashboard.FormFields {
	f := r.PostForm
	return dashboard.FormFields{
		FlightCode:  f.Get("id_vuelo"),
		Airline:     f.Get("aerolinea"),
		Origin:      f.Get("origen"),
		Destination: f.Get("destino"),
		DepartureAt: f.Get("fecha_salida"),
		Status:      f.Get("estado"),
		Price:       f.Get("precio"),
	}
}
