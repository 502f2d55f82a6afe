package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/models/dtos"
)

var quito = time.FixedZone("ECT", -5*60*60)

func newFlightsPage(api *fakeAPI, notices *NoticeLog) *Page {
	view := &View{
		Table:    NewTableAnchor("flightsTable"),
		Form:     NewFormModal(),
		Notifier: notices,
		Location: quito,
	}
	return NewPage(view, api.client(), nil, nil)
}

func newDashboardPage(api *fakeAPI, notices *NoticeLog, renderer ChartRenderer) *Page {
	view := &View{
		KPIs:     NewKPIPanel(),
		Charts:   NewChartAnchors(),
		Notifier: notices,
		Theme:    constants.ThemeLight,
		Location: quito,
	}
	return NewPage(view, api.client(), renderer, nil)
}

func sampleFields() FormFields {
	return FormFields{
		FlightCode:  "AV101",
		Airline:     "Avianca",
		Origin:      "UIO",
		Destination: "BOG",
		DepartureAt: "2024-03-01T09:30",
		Status:      "Programado",
		Price:       "199.90",
	}
}

func TestFormController_OpenForEdit(t *testing.T) {
	page := newFlightsPage(newFakeAPI(t), &NoticeLog{})
	price := 250.0

	page.Form.OpenForEdit(dtos.Flight{
		RecordID:    "abc123",
		FlightCode:  "AV101",
		Origin:      "UIO",
		DepartureAt: "2024-03-01T14:30:00Z",
		Status:      "Retrasado",
		Price:       &price,
	})

	state := page.View.Form.Snapshot()
	assert.True(t, state.Open)
	assert.Equal(t, ModeEdit, state.Mode)
	assert.Equal(t, "abc123", state.RecordID)
	assert.Equal(t, "UIO", state.Fields.Origin)
	assert.Equal(t, "2024-03-01T09:30", state.Fields.DepartureAt)
	assert.Equal(t, "250", state.Fields.Price)
}

func TestFormController_OpenForCreateClears(t *testing.T) {
	page := newFlightsPage(newFakeAPI(t), &NoticeLog{})
	page.Form.OpenForEdit(dtos.Flight{RecordID: "abc123", Origin: "UIO"})

	page.Form.OpenForCreate()

	state := page.View.Form.Snapshot()
	assert.True(t, state.Open)
	assert.Equal(t, ModeCreate, state.Mode)
	assert.Empty(t, state.RecordID)
	assert.Equal(t, FormFields{}, state.Fields)
}

func TestFormController_SubmitCreate(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	var (
		mu   sync.Mutex
		body map[string]any
	)
	api.on(http.MethodPost, "/api/vuelos", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		assert.NoError(t, json.Unmarshal(raw, &body))
		mu.Unlock()
		jsonHandler(http.StatusCreated, map[string]string{"message": "Vuelo creado exitosamente.", "id": "n1"})(w, r)
	})
	notices := &NoticeLog{}
	page := newFlightsPage(api, notices)
	page.Load(context.Background())
	api.reset()

	page.Form.OpenForCreate()
	page.Form.SetFields(sampleFields())
	report, err := page.Form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, api.count("POST /api/vuelos"))
	mu.Lock()
	assert.Equal(t, "UIO", body["origen"])
	assert.Equal(t, 199.9, body["precio"])
	mu.Unlock()

	assert.False(t, page.View.Form.Snapshot().Open)
	assert.Equal(t, FormFields{}, page.View.Form.Snapshot().Fields)

	require.NotNil(t, report)
	assert.Equal(t, TriggerCreate, report.Trigger)
	assert.True(t, report.Ran(WidgetTable))
	assert.False(t, report.Ran(WidgetKPI))
	assert.Equal(t, 1, api.count(listKey))

	got := notices.Notices()
	require.NotEmpty(t, got)
	assert.Equal(t, "Vuelo creado exitosamente.", got[len(got)-1].Message)
	assert.Equal(t, constants.NoticeSuccess, got[len(got)-1].Level)
}

func TestFormController_SubmitEditUsesPut(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	api.onJSON(http.MethodPut, "/api/vuelos/abc123", http.StatusOK, map[string]string{})
	notices := &NoticeLog{}
	page := newFlightsPage(api, notices)

	page.Form.OpenForEdit(dtos.Flight{RecordID: "abc123", FlightCode: "AV101"})
	report, err := page.Form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, api.count("PUT /api/vuelos/abc123"))
	assert.Zero(t, api.count("POST /api/vuelos"))
	assert.Equal(t, TriggerUpdate, report.Trigger)

	// empty server message falls back to the generic text
	got := notices.Notices()
	assert.Equal(t, constants.MsgSaveSucceeded, got[len(got)-1].Message)
}

func TestFormController_SubmitFailureKeepsModal(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "message", status: http.StatusBadRequest, body: `{"message": "El vuelo ya existe."}`, wantMsg: "El vuelo ya existe."},
		{name: "no body", status: http.StatusInternalServerError, body: ``, wantMsg: "500"},
		{name: "html body", status: http.StatusConflict, body: `<h1>conflict</h1>`, wantMsg: "409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t).withDashboardData()
			api.on(http.MethodPost, "/api/vuelos", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			notices := &NoticeLog{}
			page := newFlightsPage(api, notices)

			page.Form.OpenForCreate()
			page.Form.SetFields(sampleFields())
			report, err := page.Form.Submit(context.Background())
			require.Error(t, err)
			assert.Nil(t, report)

			state := page.View.Form.Snapshot()
			assert.True(t, state.Open)
			assert.Equal(t, sampleFields(), state.Fields)
			assert.Zero(t, api.count(listKey))

			got := notices.Notices()
			require.Len(t, got, 1)
			assert.Equal(t, constants.NoticeDanger, got[0].Level)
			assert.Contains(t, got[0].Message, tt.wantMsg)
			if tt.name == "message" {
				assert.Equal(t, tt.wantMsg, got[0].Message)
			}
		})
	}
}

func TestFormController_Delete(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	api.onJSON(http.MethodDelete, "/api/vuelos/abc123", http.StatusOK, map[string]string{"message": "Vuelo eliminado."})
	notices := &NoticeLog{}
	page := newFlightsPage(api, notices)
	require.NoError(t, page.List.Initialize(context.Background()))

	report, err := page.Form.Delete(context.Background(), "abc123", Confirmed)
	require.NoError(t, err)

	assert.Equal(t, 1, api.count("DELETE /api/vuelos/abc123"))
	assert.Equal(t, TriggerDelete, report.Trigger)
	assert.True(t, report.Ran(WidgetTable))
	assert.Equal(t, "Vuelo eliminado.", notices.Notices()[0].Message)
}

func TestFormController_DeleteDeclined(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := newFlightsPage(api, &NoticeLog{})

	_, err := page.Form.Delete(context.Background(), "abc123", decline())
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Empty(t, api.Calls())

	_, err = page.Form.Delete(context.Background(), "abc123", nil)
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Empty(t, api.Calls())
}

func TestFormController_OpenForEditByID(t *testing.T) {
	api := newFakeAPI(t)
	api.onJSON(http.MethodGet, "/api/vuelos/abc123", http.StatusOK, map[string]any{
		"id_vuelo": "AV101", "origen": "UIO", "fecha_salida": "2024-03-01T14:30:00",
	})
	notices := &NoticeLog{}
	page := newFlightsPage(api, notices)

	require.NoError(t, page.Form.OpenForEditByID(context.Background(), "abc123"))
	state := page.View.Form.Snapshot()
	assert.Equal(t, "abc123", state.RecordID)
	assert.Equal(t, "2024-03-01T14:30", state.Fields.DepartureAt)

	page.Form.Close()
	err := page.Form.OpenForEditByID(context.Background(), "missing")
	require.Error(t, err)
	assert.False(t, page.View.Form.Snapshot().Open)
	assert.Equal(t, 1, notices.Count(constants.NoticeDanger))
}

func TestBuildPayload_Price(t *testing.T) {
	f := sampleFields()

	f.Price = ""
	assert.Nil(t, buildPayload(f).Price)

	f.Price = " 120.5 "
	assert.Equal(t, 120.5, buildPayload(f).Price)

	f.Price = "cien"
	assert.Equal(t, "cien", buildPayload(f).Price)

	f.Price = "1e400"
	payload := buildPayload(f)
	assert.Equal(t, "1e400", payload.Price)
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"precio":"1e400"`)
}

func TestFormController_RestoreKeepsMode(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	api.onJSON(http.MethodPut, "/api/vuelos/abc123", http.StatusOK, map[string]string{"message": "ok"})
	page := newFlightsPage(api, &NoticeLog{})

	page.Form.Restore(" abc123 ", sampleFields())
	state := page.View.Form.Snapshot()
	assert.True(t, state.Open)
	assert.Equal(t, ModeEdit, state.Mode)
	assert.Equal(t, "abc123", state.RecordID)

	_, err := page.Form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("PUT /api/vuelos/abc123"))

	page.Form.Restore("", sampleFields())
	assert.Equal(t, ModeCreate, page.View.Form.Snapshot().Mode)
}
