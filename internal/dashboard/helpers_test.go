package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"infinite-experiment/skyboard/internal/apiclient"
)

// fakeAPI is a scripted flights API that records every call
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	handlers map[string]http.HandlerFunc
	server   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{handlers: make(map[string]http.HandlerFunc)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls = append(f.calls, key)
	h := f.handlers[key]
	f.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "not found"}`))
		return
	}
	h(w, r)
}

func (f *fakeAPI) on(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

func (f *fakeAPI) onJSON(method, path string, status int, body any) {
	f.on(method, path, jsonHandler(status, body))
}

func (f *fakeAPI) client() *apiclient.Client {
	return apiclient.NewClient(f.server.URL, nil)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) count(key string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

const (
	listKey   = "GET /api/flights"
	kpiKey    = "GET /api/kpis"
	chartsKey = "GET /api/chart_data"
)

func (f *fakeAPI) withDashboardData() *fakeAPI {
	f.onJSON(http.MethodGet, "/api/flights", http.StatusOK, map[string]any{
		"draw": 1, "recordsTotal": 2, "recordsFiltered": 2,
		"data": []map[string]any{
			{"_id": "abc123", "id_vuelo": "AV101", "aerolinea": "Avianca", "origen": "UIO", "destino": "BOG", "fecha_salida": "2024-03-01T14:30:00Z", "estado": "Programado"},
			{"id_vuelo": "LA202", "aerolinea": "LATAM", "origen": "GYE", "destino": "LIM", "fecha_salida": "2024-03-02T08:00:00Z", "estado": "En Vuelo", "actions": `<button class="edit-btn" data-id="def456">Editar</button>`},
		},
	})
	f.onJSON(http.MethodGet, "/api/kpis", http.StatusOK, map[string]any{
		"total_flights": 12, "flights_today": 3, "active_flights": 2, "total_revenue": 15230.5,
	})
	f.onJSON(http.MethodGet, "/api/chart_data", http.StatusOK, map[string]any{
		"vuelosPorAerolinea": map[string]any{"labels": []string{"Avianca", "LATAM"}, "data": []float64{7, 5}},
		"estadoVuelos":       map[string]any{"labels": []string{"Programado", "En Vuelo", "Cancelado"}, "data": []float64{6, 4, 2}},
		"vuelosDiarios":      map[string]any{"labels": []string{"2024-03-01", "2024-03-02"}, "data": []float64{5, 7}},
	})
	return f
}

// fakeRenderer builds in-memory chart instances and tracks which are alive
type fakeRenderer struct {
	mu      sync.Mutex
	seq     int
	live    map[string]bool
	specs   map[ChartID]ChartSpec
	fail    map[ChartID]error
	panicOn ChartID
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		live:  make(map[string]bool),
		specs: make(map[ChartID]ChartSpec),
		fail:  make(map[ChartID]error),
	}
}

func (r *fakeRenderer) Build(spec ChartSpec) (ChartInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if spec.Anchor == r.panicOn && r.panicOn != "" {
		panic("renderer exploded")
	}
	if err := r.fail[spec.Anchor]; err != nil {
		return nil, err
	}
	r.seq++
	id := fmt.Sprintf("%s-%d", spec.Anchor, r.seq)
	r.live[id] = true
	r.specs[spec.Anchor] = spec
	return &fakeInstance{id: id, r: r}, nil
}

func (r *fakeRenderer) alive() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ok := range r.live {
		if ok {
			n++
		}
	}
	return n
}

func (r *fakeRenderer) spec(id ChartID) ChartSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.specs[id]
}

type fakeInstance struct {
	id string
	r  *fakeRenderer
}

func (i *fakeInstance) ID() string { return i.id }

func (i *fakeInstance) Destroy() {
	i.r.mu.Lock()
	defer i.r.mu.Unlock()
	i.r.live[i.id] = false
}

var errBuild = errors.New("canvas unavailable")

func decline() Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return false })
}
