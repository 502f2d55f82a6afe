package dashboard

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/metrics"
)

func TestView_Presence(t *testing.T) {
	assert.Equal(t, []Widget{WidgetKPI}, (&View{KPIs: NewKPIPanel()}).Presence().Widgets())
	assert.Empty(t, (&View{}).Presence().Widgets())

	full := &View{Table: NewTableAnchor("t"), KPIs: NewKPIPanel(), Charts: NewChartAnchors()}
	assert.Equal(t, []Widget{WidgetTable, WidgetKPI, WidgetCharts}, full.Presence().Widgets())
}

func TestRefreshAll_KPIOnlyPage(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := NewPage(&View{KPIs: NewKPIPanel()}, api.client(), newFakeRenderer(), nil)

	var report Report
	require.NotPanics(t, func() {
		report = page.Refresher.RefreshAll(context.Background(), TriggerUpdate)
	})

	assert.True(t, report.OK())
	assert.True(t, report.Ran(WidgetKPI))
	assert.False(t, report.Ran(WidgetTable))
	assert.False(t, report.Ran(WidgetCharts))
	assert.Equal(t, []string{kpiKey}, api.Calls())
	assert.Nil(t, page.List)
	assert.Nil(t, page.Charts)
}

func TestRefreshAll_TriggerMapping(t *testing.T) {
	tests := []struct {
		trigger   Trigger
		wantStart string
	}{
		{TriggerLoad, "0"},
		{TriggerCreate, "0"},
		{TriggerUpdate, "20"},
		{TriggerDelete, "20"},
	}

	for _, tt := range tests {
		t.Run(string(tt.trigger), func(t *testing.T) {
			api := newFakeAPI(t)
			var (
				mu    sync.Mutex
				start string
			)
			api.on(http.MethodGet, "/api/flights", func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				start = r.URL.Query().Get("start")
				mu.Unlock()
				jsonHandler(http.StatusOK, map[string]any{"data": []any{}})(w, r)
			})
			page := newFlightsPage(api, &NoticeLog{})
			ctx := context.Background()
			require.NoError(t, page.List.Initialize(ctx))
			require.NoError(t, page.List.Query(ctx, TableState{Start: 20, Length: 10}))
			bindingBefore := page.View.Table.Snapshot().BindingID

			report := page.Refresher.RefreshAll(ctx, tt.trigger)
			require.True(t, report.OK())
			mu.Lock()
			assert.Equal(t, tt.wantStart, start)
			mu.Unlock()

			rebound := page.View.Table.Snapshot().BindingID != bindingBefore
			assert.Equal(t, tt.trigger == TriggerLoad, rebound)
		})
	}
}

func TestRefreshAll_FailureIsolation(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	api.onJSON(http.MethodGet, "/api/kpis", http.StatusInternalServerError, map[string]string{"message": "kpi down"})
	renderer := newFakeRenderer()
	notices := &NoticeLog{}
	view := &View{
		Table:    NewTableAnchor("flightsTable"),
		KPIs:     NewKPIPanel(),
		Charts:   NewChartAnchors(),
		Notifier: notices,
	}
	reg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
	page := NewPage(view, api.client(), renderer, reg)

	report := page.Load(context.Background())

	assert.Equal(t, []Widget{WidgetKPI}, report.Failed())
	assert.NoError(t, report.Err(WidgetTable))
	assert.NoError(t, report.Err(WidgetCharts))
	assert.Len(t, view.Table.Snapshot().Rows, 2)
	assert.Equal(t, 3, renderer.alive())
	assert.Equal(t, constants.PlaceholderError, view.KPIs.Slot(constants.SlotTotalFlights))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.WidgetRefreshTotal.WithLabelValues("kpi", "load", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.WidgetRefreshTotal.WithLabelValues("charts", "load", "success")))
}

func TestRefreshAll_PanicIsolation(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	renderer := newFakeRenderer()
	renderer.panicOn = ChartFlightsByAirline
	page := newDashboardPage(api, &NoticeLog{}, renderer)

	report := page.Load(context.Background())

	require.Error(t, report.Err(WidgetCharts))
	assert.Contains(t, report.Err(WidgetCharts).Error(), "panicked")
	assert.NoError(t, report.Err(WidgetKPI))
	assert.Equal(t, "12", page.View.KPIs.Slot(constants.SlotTotalFlights))
}

func TestRefreshAll_RunsConcurrently(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	chartsStarted := make(chan struct{})
	var overlapped atomic.Bool
	api.on(http.MethodGet, "/api/chart_data", func(w http.ResponseWriter, r *http.Request) {
		close(chartsStarted)
		jsonHandler(http.StatusOK, map[string]any{})(w, r)
	})
	api.on(http.MethodGet, "/api/kpis", func(w http.ResponseWriter, r *http.Request) {
		// the KPI response is held until the chart request is in flight too
		select {
		case <-chartsStarted:
			overlapped.Store(true)
		case <-time.After(2 * time.Second):
		}
		jsonHandler(http.StatusOK, map[string]any{"total_flights": 1})(w, r)
	})
	page := newDashboardPage(api, &NoticeLog{}, newFakeRenderer())

	report := page.Load(context.Background())

	assert.True(t, report.OK())
	assert.True(t, overlapped.Load())
	assert.Equal(t, "1", page.View.KPIs.Slot(constants.SlotTotalFlights))
}

func TestPage_CloseReleasesResources(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	renderer := newFakeRenderer()
	view := &View{Table: NewTableAnchor("t"), Charts: NewChartAnchors()}
	page := NewPage(view, api.client(), renderer, nil)
	page.Load(context.Background())
	require.Equal(t, 3, renderer.alive())
	require.True(t, view.Table.Subscribed())

	page.Close()
	page.Close()

	assert.Zero(t, renderer.alive())
	assert.False(t, view.Table.Snapshot().Bound)
	assert.False(t, view.Table.Subscribed())
}

func TestPage_RefreshAfterCloseBuildsNothing(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	renderer := newFakeRenderer()
	view := &View{Table: NewTableAnchor("t"), Charts: NewChartAnchors()}
	page := NewPage(view, api.client(), renderer, nil)
	page.Close()
	api.reset()

	report := page.Load(context.Background())

	assert.ErrorIs(t, report.Err(WidgetCharts), ErrPageClosed)
	assert.ErrorIs(t, report.Err(WidgetTable), ErrPageClosed)
	assert.Zero(t, renderer.alive())
	assert.False(t, view.Table.Snapshot().Bound)
	assert.False(t, view.Table.Subscribed())
	assert.Zero(t, api.count("GET /api/chart_data"))
	assert.Zero(t, api.count("GET /api/flights"))
}

func TestPage_RowActionOpensEditor(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	api.onJSON(http.MethodGet, "/api/vuelos/abc123", http.StatusOK, map[string]any{"_id": "abc123", "id_vuelo": "AV101"})
	page := newFlightsPage(api, &NoticeLog{})
	ctx := context.Background()
	page.Load(ctx)

	require.NoError(t, page.View.Table.Dispatch(ctx, RowAction{Kind: ActionEdit, RecordID: "abc123"}))
	assert.Equal(t, "abc123", page.View.Form.Snapshot().RecordID)

	require.NoError(t, page.View.Table.Dispatch(ctx, RowAction{Kind: ActionDelete, RecordID: "abc123", Confirm: decline()}))
	assert.Zero(t, api.count("DELETE /api/vuelos/abc123"))
}
