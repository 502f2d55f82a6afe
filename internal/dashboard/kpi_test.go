package dashboard

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/skyboard/internal/constants"
)

func TestKPIController_Refresh(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	panel := NewKPIPanel()
	ctrl := NewKPIController(api.client(), panel, nil)

	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, "12", panel.Slot(constants.SlotTotalFlights))
	assert.Equal(t, "3", panel.Slot(constants.SlotFlightsToday))
	assert.Equal(t, "2", panel.Slot(constants.SlotActiveFlights))
	assert.Equal(t, "$15230.50", panel.Slot(constants.SlotTotalRevenue))
}

func TestKPIController_MissingFieldsVersusZero(t *testing.T) {
	api := newFakeAPI(t)
	api.onJSON(http.MethodGet, "/api/kpis", http.StatusOK, map[string]any{"total_flights": 0})
	panel := NewKPIPanel()
	ctrl := NewKPIController(api.client(), panel, nil)

	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.Equal(t, "0", panel.Slot(constants.SlotTotalFlights))
	assert.Equal(t, constants.PlaceholderMissing, panel.Slot(constants.SlotFlightsToday))
	assert.Equal(t, constants.PlaceholderMissing, panel.Slot(constants.SlotActiveFlights))
	assert.Equal(t, constants.PlaceholderMissing, panel.Slot(constants.SlotTotalRevenue))
}

func TestKPIController_FailureOverwritesEverySlot(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	notices := &NoticeLog{}
	panel := NewKPIPanel()
	ctrl := NewKPIController(api.client(), panel, notices)
	ctx := context.Background()

	require.NoError(t, ctrl.Refresh(ctx))
	require.Equal(t, "12", panel.Slot(constants.SlotTotalFlights))

	api.onJSON(http.MethodGet, "/api/kpis", http.StatusInternalServerError, map[string]string{"message": "boom"})
	require.Error(t, ctrl.Refresh(ctx))

	for _, slot := range panel.Slots() {
		assert.Equal(t, constants.PlaceholderError, slot.Value, slot.Name)
	}
	assert.Equal(t, 1, notices.Count(constants.NoticeDanger))
	assert.Equal(t, constants.MsgKPILoadFailed, notices.Notices()[0].Message)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.00", FormatMoney(0))
	assert.Equal(t, "$1234.57", FormatMoney(1234.567))
	assert.Equal(t, "$10.10", FormatMoney(10.1))
}
