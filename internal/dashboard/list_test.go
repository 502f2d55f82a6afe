package dashboard

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/skyboard/internal/constants"
)

func TestListController_InitializeTwiceBindsOnce(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := newFlightsPage(api, &NoticeLog{})
	ctx := context.Background()

	require.NoError(t, page.List.Initialize(ctx))
	first := page.View.Table.Snapshot()
	require.True(t, first.Bound)
	require.Len(t, first.Rows, 2)

	require.NoError(t, page.List.Initialize(ctx))
	second := page.View.Table.Snapshot()

	assert.True(t, second.Bound)
	assert.NotEqual(t, first.BindingID, second.BindingID)
	assert.Len(t, second.Rows, 2)
	assert.Len(t, second.Columns, len(FlightColumns))
	assert.True(t, page.View.Table.Subscribed())
}

func TestListController_Rows(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := newFlightsPage(api, &NoticeLog{})
	require.NoError(t, page.List.Initialize(context.Background()))

	snap := page.View.Table.Snapshot()
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "abc123", snap.Rows[0].RecordID)
	assert.Equal(t, []string{"AV101", "Avianca", "UIO", "BOG", "2024-03-01 09:30", "Programado"}, snap.Rows[0].Cells)
	// id recovered from the actions markup
	assert.Equal(t, "def456", snap.Rows[1].RecordID)
	assert.Equal(t, 2, snap.RecordsTotal)

	actions := snap.Columns[len(snap.Columns)-1]
	assert.Equal(t, ActionsColumn, actions.Data)
	assert.False(t, actions.Orderable)
	assert.False(t, actions.Searchable)
}

func TestListController_ReloadPagination(t *testing.T) {
	api := newFakeAPI(t)
	var (
		mu     sync.Mutex
		starts []string
	)
	api.on(http.MethodGet, "/api/flights", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		starts = append(starts, r.URL.Query().Get("start"))
		mu.Unlock()
		jsonHandler(http.StatusOK, map[string]any{"recordsTotal": 60, "recordsFiltered": 60, "data": []any{}})(w, r)
	})
	page := newFlightsPage(api, &NoticeLog{})
	ctx := context.Background()

	require.NoError(t, page.List.Initialize(ctx))
	require.NoError(t, page.List.Query(ctx, TableState{Start: 20, Length: 10}))
	require.NoError(t, page.List.Reload(ctx, false))
	require.NoError(t, page.List.Reload(ctx, true))
	require.NoError(t, page.List.Reload(ctx, false))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0", "20", "20", "0", "0"}, starts)
}

func TestListController_ReloadBeforeInitialize(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := newFlightsPage(api, &NoticeLog{})

	require.NoError(t, page.List.Reload(context.Background(), false))
	assert.True(t, page.View.Table.Snapshot().Bound)
	assert.Len(t, page.View.Table.Snapshot().Rows, 2)
}

func TestListController_FailureClearsRows(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	notices := &NoticeLog{}
	page := newFlightsPage(api, notices)
	ctx := context.Background()
	require.NoError(t, page.List.Initialize(ctx))

	api.onJSON(http.MethodGet, "/api/flights", http.StatusServiceUnavailable, map[string]string{"message": "DB caída"})
	require.Error(t, page.List.Reload(ctx, false))

	snap := page.View.Table.Snapshot()
	assert.Empty(t, snap.Rows)
	assert.Equal(t, "DB caída", snap.Error)
	require.Equal(t, 1, notices.Count(constants.NoticeDanger))
	assert.Contains(t, notices.Notices()[0].Message, "DB caída")
}

func TestListController_QueryNormalizes(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := newFlightsPage(api, &NoticeLog{})
	ctx := context.Background()
	require.NoError(t, page.List.Initialize(ctx))

	require.NoError(t, page.List.Query(ctx, TableState{Start: 30, Length: 7, OrderColumn: 6, OrderDir: "DESC", Search: " UIO "}))

	st := page.View.Table.Snapshot().State
	assert.Equal(t, 0, st.Start)
	assert.Equal(t, 10, st.Length)
	assert.Equal(t, 0, st.OrderColumn)
	assert.Equal(t, "desc", st.OrderDir)
	assert.Equal(t, "UIO", st.Search)
}

func TestTableAnchor_SubscriptionScopedToBinding(t *testing.T) {
	api := newFakeAPI(t).withDashboardData()
	page := newFlightsPage(api, &NoticeLog{})
	ctx := context.Background()

	var (
		mu  sync.Mutex
		got []RowAction
	)
	page.List.OnAction(func(_ context.Context, a RowAction) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, a)
		return nil
	})

	assert.ErrorIs(t, page.View.Table.Dispatch(ctx, RowAction{Kind: ActionEdit, RecordID: "x"}), ErrTableNotBound)

	require.NoError(t, page.List.Initialize(ctx))
	require.NoError(t, page.List.Initialize(ctx))
	require.NoError(t, page.View.Table.Dispatch(ctx, RowAction{Kind: ActionEdit, RecordID: "abc123"}))

	mu.Lock()
	assert.Len(t, got, 1)
	mu.Unlock()

	page.List.Teardown()
	assert.False(t, page.View.Table.Subscribed())
	assert.Empty(t, page.View.Table.Snapshot().Rows)
	assert.ErrorIs(t, page.View.Table.Dispatch(ctx, RowAction{Kind: ActionEdit, RecordID: "abc123"}), ErrTableNotBound)
}

func TestTableAnchor_StaleUnsubscribeKeepsNewBinding(t *testing.T) {
	anchor := NewTableAnchor("t")
	anchor.bind(FlightColumns)
	unsub, err := anchor.Subscribe(func(context.Context, RowAction) error { return nil })
	require.NoError(t, err)

	anchor.bind(FlightColumns)
	_, err = anchor.Subscribe(func(context.Context, RowAction) error { return nil })
	require.NoError(t, err)

	unsub()
	assert.True(t, anchor.Subscribed())
}

func TestRecordIDFromActions(t *testing.T) {
	assert.Equal(t, "r9", recordIDFromActions(`<button data-id="r9">Editar</button><button data-id="r9">Eliminar</button>`))
	assert.Empty(t, recordIDFromActions(`<span>sin id</span>`))
	assert.Empty(t, recordIDFromActions(""))
}
