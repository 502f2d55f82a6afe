package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/models/dtos"
)

// ListController binds the flights table to the server-paginated source
type ListController struct {
	api      FlightsAPI
	anchor   *TableAnchor
	notifier Notifier
	loc      *time.Location
	onAction RowActionHandler

	// guards the bind sequence and unsubscribe
	mu          sync.Mutex
	unsubscribe func()
	closed      bool
}

func NewListController(api FlightsAPI, anchor *TableAnchor, notifier Notifier, loc *time.Location) *ListController {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &ListController{api: api, anchor: anchor, notifier: notifier, loc: loc}
}

// OnAction sets the handler subscribed on every (re)initialization
func (c *ListController) OnAction(h RowActionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAction = h
}

// Initialize (re)binds the table and loads the first page. Calling it again
// tears the previous binding down first, so there is only ever one.
func (c *ListController) Initialize(ctx context.Context) error {
	if err := c.rebind(); err != nil {
		return err
	}
	return c.fetch(ctx, true)
}

func (c *ListController) rebind() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrPageClosed
	}

	c.teardownLocked()
	c.anchor.bind(FlightColumns)
	if c.onAction == nil {
		return nil
	}
	unsub, err := c.anchor.Subscribe(c.onAction)
	if err != nil {
		return err
	}
	c.unsubscribe = unsub
	return nil
}

// Reload refetches the current binding. resetPagination returns to the first page.
func (c *ListController) Reload(ctx context.Context, resetPagination bool) error {
	if c.anchor.bindingID() == "" {
		return c.Initialize(ctx)
	}
	return c.fetch(ctx, resetPagination)
}

// Query applies a paging, ordering or search change and refetches
func (c *ListController) Query(ctx context.Context, next TableState) error {
	if c.anchor.bindingID() == "" {
		if err := c.Initialize(ctx); err != nil {
			return err
		}
	}
	c.anchor.setState(normalizeState(c.anchor.currentState(), next))
	return c.fetch(ctx, false)
}

// Teardown releases the binding and its row-action subscription
func (c *ListController) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// Close tears the binding down for good; Initialize fails afterwards
func (c *ListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.teardownLocked()
}

func (c *ListController) teardownLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.anchor.Teardown()
}

func (c *ListController) fetch(ctx context.Context, resetPagination bool) error {
	draw, st, bindingID := c.anchor.nextDraw(resetPagination)

	page, err := c.api.ListFlights(ctx, apiclient.TableQuery{
		Draw:        draw,
		Start:       st.Start,
		Length:      st.Length,
		Search:      st.Search,
		OrderColumn: st.OrderColumn,
		OrderDir:    st.OrderDir,
		Columns:     columnNames(FlightColumns),
	})
	if err != nil {
		msg := apiclient.MessageOf(err)
		c.anchor.fail(bindingID, msg)
		c.notifier.Notify(ctx, constants.NoticeDanger, constants.MsgTableLoadFailed+": "+msg)
		return err
	}

	rows := make([]TableRow, 0, len(page.Data))
	for _, f := range page.Data {
		rows = append(rows, c.toRow(f))
	}
	total, filtered := page.RecordsTotal, page.RecordsFiltered
	if total == 0 && filtered == 0 {
		total, filtered = len(rows), len(rows)
	}
	if !c.anchor.fill(bindingID, rows, total, filtered) {
		logging.Debug("Dropped table page for a replaced binding", "anchor", c.anchor.ID, "draw", draw)
	}
	return nil
}

func (c *ListController) toRow(f dtos.Flight) TableRow {
	id := f.RecordID
	if id == "" {
		id = recordIDFromActions(f.ActionsHTML)
	}
	return TableRow{
		RecordID: id,
		Cells: []string{
			f.FlightCode,
			f.Airline,
			f.Origin,
			f.Destination,
			DisplayTime(f.DepartureAt, c.loc),
			f.Status,
		},
	}
}

// recordIDFromActions reads the data-id of the first trigger in server-rendered actions markup
func recordIDFromActions(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	id, _ := doc.Find("[data-id]").First().Attr("data-id")
	return strings.TrimSpace(id)
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Data
	}
	return names
}

func normalizeState(prev, next TableState) TableState {
	st := next
	if !validLength(st.Length) {
		st.Length = DefaultTableState.Length
	}
	if st.Start < 0 {
		st.Start = 0
	}
	if st.OrderColumn < 0 || st.OrderColumn >= len(FlightColumns) || !FlightColumns[st.OrderColumn].Orderable {
		st.OrderColumn = 0
	}
	st.OrderDir = strings.ToLower(st.OrderDir)
	if st.OrderDir != "desc" {
		st.OrderDir = "asc"
	}
	st.Search = strings.TrimSpace(st.Search)
	// a new search or page size starts over
	if st.Search != prev.Search || st.Length != prev.Length {
		st.Start = 0
	}
	return st
}

func validLength(n int) bool {
	for _, l := range PageLengths {
		if l == n {
			return true
		}
	}
	return false
}
