package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Column describes one table column
type Column struct {
	Data       string
	Title      string
	Orderable  bool
	Searchable bool
}

// ActionsColumn is the synthetic column carrying row triggers
const ActionsColumn = "actions"

// FlightColumns is the fixed column set of the flights table
var FlightColumns = []Column{
	{Data: "id_vuelo", Title: "Vuelo", Orderable: true, Searchable: true},
	{Data: "aerolinea", Title: "Aerolínea", Orderable: true, Searchable: true},
	{Data: "origen", Title: "Origen", Orderable: true, Searchable: true},
	{Data: "destino", Title: "Destino", Orderable: true, Searchable: true},
	{Data: "fecha_salida", Title: "Salida", Orderable: true, Searchable: true},
	{Data: "estado", Title: "Estado", Orderable: true, Searchable: true},
	{Data: ActionsColumn, Title: "Acciones", Orderable: false, Searchable: false},
}

// PageLengths are the page sizes the table offers
var PageLengths = []int{10, 25, 50, 100}

// ActionKind is a row trigger
type ActionKind string

const (
	ActionEdit   ActionKind = "edit"
	ActionDelete ActionKind = "delete"
)

// RowAction is fired by a row's edit or delete trigger
type RowAction struct {
	Kind     ActionKind
	RecordID string
	// Confirm is consulted by delete actions
	Confirm Confirmer
}

// RowActionHandler receives row actions of a bound table
type RowActionHandler func(ctx context.Context, action RowAction) error

// TableRow is one rendered row
type TableRow struct {
	RecordID string
	Cells    []string
}

// TableState is the paging, ordering and search state of the table
type TableState struct {
	Start       int
	Length      int
	OrderColumn int
	OrderDir    string
	Search      string
}

// DefaultTableState is used on every (re)initialization
var DefaultTableState = TableState{Length: 10, OrderColumn: 0, OrderDir: "asc"}

// TableSnapshot is a point-in-time copy of the table region
type TableSnapshot struct {
	ID              string
	BindingID       string
	Bound           bool
	Columns         []Column
	Rows            []TableRow
	State           TableState
	RecordsTotal    int
	RecordsFiltered int
	Error           string
}

// ErrTableNotBound is returned when a row action arrives before initialization
var ErrTableNotBound = errors.New("table is not bound")

type tableBinding struct {
	id      string
	columns []Column
	handler RowActionHandler
}

// TableAnchor is the table region of a page. At most one binding exists at a time.
type TableAnchor struct {
	ID string

	mu       sync.Mutex
	binding  *tableBinding
	rows     []TableRow
	state    TableState
	draw     int
	total    int
	filtered int
	errText  string
}

func NewTableAnchor(id string) *TableAnchor {
	return &TableAnchor{ID: id, state: DefaultTableState}
}

// Snapshot copies the region for rendering
func (a *TableAnchor) Snapshot() TableSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := TableSnapshot{
		ID:              a.ID,
		Rows:            append([]TableRow(nil), a.rows...),
		State:           a.state,
		RecordsTotal:    a.total,
		RecordsFiltered: a.filtered,
		Error:           a.errText,
	}
	if a.binding != nil {
		snap.Bound = true
		snap.BindingID = a.binding.id
		snap.Columns = append([]Column(nil), a.binding.columns...)
	}
	return snap
}

// Subscribe registers the row-action handler of the current binding.
// The returned func removes it, unless a newer binding already replaced it.
func (a *TableAnchor) Subscribe(handler RowActionHandler) (func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.binding == nil {
		return nil, ErrTableNotBound
	}
	b := a.binding
	b.handler = handler
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.binding == b {
			b.handler = nil
		}
	}, nil
}

// Dispatch delivers a row action to the current subscriber
func (a *TableAnchor) Dispatch(ctx context.Context, action RowAction) error {
	a.mu.Lock()
	var handler RowActionHandler
	if a.binding != nil {
		handler = a.binding.handler
	}
	a.mu.Unlock()

	if handler == nil {
		return ErrTableNotBound
	}
	return handler(ctx, action)
}

// Subscribed reports whether a row-action handler is attached
func (a *TableAnchor) Subscribed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.binding != nil && a.binding.handler != nil
}

// bind tears down any previous binding, clears rows and installs a fresh one
func (a *TableAnchor) bind(columns []Column) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.teardownLocked()
	a.binding = &tableBinding{id: uuid.New().String(), columns: columns}
	a.state = DefaultTableState
	return a.binding.id
}

// Teardown removes the binding, its subscription and the rendered rows
func (a *TableAnchor) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.teardownLocked()
}

func (a *TableAnchor) teardownLocked() {
	if a.binding != nil {
		a.binding.handler = nil
	}
	a.binding = nil
	a.rows = nil
	a.total, a.filtered = 0, 0
	a.errText = ""
}

func (a *TableAnchor) bindingID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.binding == nil {
		return ""
	}
	return a.binding.id
}

// nextDraw bumps the draw counter and returns the request state for the current binding
func (a *TableAnchor) nextDraw(resetPagination bool) (int, TableState, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if resetPagination {
		a.state.Start = 0
	}
	a.draw++
	id := ""
	if a.binding != nil {
		id = a.binding.id
	}
	return a.draw, a.state, id
}

func (a *TableAnchor) setState(st TableState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = st
}

func (a *TableAnchor) currentState() TableState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// fill replaces the rows when the response still belongs to the live binding
func (a *TableAnchor) fill(bindingID string, rows []TableRow, total, filtered int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.binding == nil || a.binding.id != bindingID {
		return false
	}
	a.rows = rows
	a.total = total
	a.filtered = filtered
	a.errText = ""
	return true
}

func (a *TableAnchor) fail(bindingID, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.binding == nil || a.binding.id != bindingID {
		return
	}
	a.rows = nil
	a.total, a.filtered = 0, 0
	a.errText = msg
}
