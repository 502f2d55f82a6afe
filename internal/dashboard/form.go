package dashboard

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/models/dtos"
)

// FormMode is the state of the add/edit modal
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// FormFields are the visible inputs of the modal, as text
type FormFields struct {
	FlightCode  string
	Airline     string
	Origin      string
	Destination string
	DepartureAt string
	Status      string
	Price       string
}

// FormState is a point-in-time copy of the modal
type FormState struct {
	Open     bool
	Mode     FormMode
	RecordID string
	Fields   FormFields
	Error    string
}

// FormModal is the add/edit modal region
type FormModal struct {
	mu       sync.Mutex
	open     bool
	recordID string
	fields   FormFields
	errText  string
}

func NewFormModal() *FormModal {
	return &FormModal{}
}

// Snapshot copies the modal state for rendering
func (m *FormModal) Snapshot() FormState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return FormState{
		Open:     m.open,
		Mode:     modeFor(m.recordID),
		RecordID: m.recordID,
		Fields:   m.fields,
		Error:    m.errText,
	}
}

// SetFields records what the user typed. The hidden id is left alone.
func (m *FormModal) SetFields(f FormFields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = f
}

func (m *FormModal) show(recordID string, f FormFields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.recordID = recordID
	m.fields = f
	m.errText = ""
}

func (m *FormModal) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.recordID = ""
	m.fields = FormFields{}
	m.errText = ""
}

func (m *FormModal) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errText = msg
}

func (m *FormModal) pending() (string, FormFields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordID, m.fields
}

// the hidden id alone decides the mode
func modeFor(recordID string) FormMode {
	if strings.TrimSpace(recordID) == "" {
		return ModeCreate
	}
	return ModeEdit
}

// FlightsAPI is the part of the API gateway the controllers use
type FlightsAPI interface {
	ListFlights(ctx context.Context, q apiclient.TableQuery) (*dtos.FlightPage, error)
	GetFlight(ctx context.Context, id string) (*dtos.Flight, error)
	CreateFlight(ctx context.Context, payload dtos.FlightPayload) (*dtos.MessageResponse, error)
	UpdateFlight(ctx context.Context, id string, payload dtos.FlightPayload) (*dtos.MessageResponse, error)
	DeleteFlight(ctx context.Context, id string) (*dtos.MessageResponse, error)
	GetKPIs(ctx context.Context) (*dtos.KPISnapshot, error)
	GetChartData(ctx context.Context) (*dtos.ChartData, error)
}

// Ensure Client implements FlightsAPI
var _ FlightsAPI = (*apiclient.Client)(nil)

// refresher is what mutations trigger on success
type refresher interface {
	RefreshAll(ctx context.Context, trigger Trigger) Report
}

// FormController drives the add/edit modal and the delete action
type FormController struct {
	api       FlightsAPI
	modal     *FormModal
	notifier  Notifier
	refresher refresher
	loc       *time.Location
}

func NewFormController(api FlightsAPI, modal *FormModal, notifier Notifier, loc *time.Location) *FormController {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &FormController{api: api, modal: modal, notifier: notifier, loc: loc}
}

// OpenForCreate clears the modal and opens it in create mode
func (c *FormController) OpenForCreate() {
	c.modal.show("", FormFields{})
}

// OpenForEdit fills the modal from record and opens it in edit mode
func (c *FormController) OpenForEdit(record dtos.Flight) {
	fields := FormFields{
		FlightCode:  record.FlightCode,
		Airline:     record.Airline,
		Origin:      record.Origin,
		Destination: record.Destination,
		DepartureAt: ToInputValue(record.DepartureAt, c.loc),
		Status:      record.Status,
	}
	if record.Price != nil {
		fields.Price = decimal.NewFromFloat(*record.Price).String()
	}
	c.modal.show(record.RecordID, fields)
}

// OpenForEditByID fetches the record and opens it for editing. The modal is untouched on failure.
func (c *FormController) OpenForEditByID(ctx context.Context, id string) error {
	record, err := c.api.GetFlight(ctx, id)
	if err != nil {
		c.notifier.Notify(ctx, constants.NoticeDanger, apiclient.MessageOf(err))
		return err
	}
	if record.RecordID == "" {
		record.RecordID = id
	}
	c.OpenForEdit(*record)
	return nil
}

// SetFields stores user input without changing the mode
func (c *FormController) SetFields(f FormFields) {
	c.modal.SetFields(f)
}

// Restore reopens the modal with state that round-tripped through the browser.
// The hidden id decides the mode exactly as it would for a live modal.
func (c *FormController) Restore(recordID string, f FormFields) {
	c.modal.show(strings.TrimSpace(recordID), f)
}

// Close dismisses the modal and discards its contents
func (c *FormController) Close() {
	c.modal.close()
}

// Submit sends the modal contents. An empty hidden id creates, otherwise the record is updated.
// On failure the modal stays open with the entered values.
func (c *FormController) Submit(ctx context.Context) (*Report, error) {
	recordID, fields := c.modal.pending()
	payload := buildPayload(fields)

	var (
		resp    *dtos.MessageResponse
		err     error
		trigger Trigger
	)
	if modeFor(recordID) == ModeCreate {
		trigger = TriggerCreate
		resp, err = c.api.CreateFlight(ctx, payload)
	} else {
		trigger = TriggerUpdate
		resp, err = c.api.UpdateFlight(ctx, recordID, payload)
	}

	if err != nil {
		msg := apiclient.MessageOf(err)
		logging.Warn("Flight save failed",
			"record_id", recordID,
			"mode", modeFor(recordID),
			"error", err,
		)
		c.modal.setError(msg)
		c.notifier.Notify(ctx, constants.NoticeDanger, msg)
		return nil, err
	}

	c.modal.close()
	c.notifier.Notify(ctx, constants.NoticeSuccess, messageOr(resp, constants.MsgSaveSucceeded))
	return c.refresh(ctx, trigger), nil
}

// Delete removes the record once confirm approves. Declining sends nothing.
func (c *FormController) Delete(ctx context.Context, id string, confirm Confirmer) (*Report, error) {
	if confirm == nil || !confirm.Confirm(ctx, constants.MsgDeleteConfirm) {
		return nil, ErrDeclined
	}

	resp, err := c.api.DeleteFlight(ctx, id)
	if err != nil {
		logging.Warn("Flight delete failed", "record_id", id, "error", err)
		c.notifier.Notify(ctx, constants.NoticeDanger, apiclient.MessageOf(err))
		return nil, err
	}

	c.notifier.Notify(ctx, constants.NoticeSuccess, messageOr(resp, constants.MsgDeleteSucceeded))
	return c.refresh(ctx, TriggerDelete), nil
}

// HandleRowAction routes table edit/delete triggers into the modal
func (c *FormController) HandleRowAction(ctx context.Context, action RowAction) error {
	switch action.Kind {
	case ActionEdit:
		return c.OpenForEditByID(ctx, action.RecordID)
	case ActionDelete:
		_, err := c.Delete(ctx, action.RecordID, action.Confirm)
		if errors.Is(err, ErrDeclined) {
			return nil
		}
		return err
	}
	return nil
}

func (c *FormController) refresh(ctx context.Context, trigger Trigger) *Report {
	if c.refresher == nil {
		return nil
	}
	report := c.refresher.RefreshAll(ctx, trigger)
	return &report
}

// ErrDeclined is returned when the user does not confirm a delete
var ErrDeclined = errors.New("delete not confirmed")

func messageOr(resp *dtos.MessageResponse, fallback string) string {
	if resp == nil || strings.TrimSpace(resp.Message) == "" {
		return fallback
	}
	return resp.Message
}

func buildPayload(f FormFields) dtos.FlightPayload {
	payload := dtos.FlightPayload{
		FlightCode:  f.FlightCode,
		Airline:     f.Airline,
		Origin:      f.Origin,
		Destination: f.Destination,
		DepartureAt: f.DepartureAt,
		Status:      f.Status,
	}
	price := strings.TrimSpace(f.Price)
	if price == "" {
		return payload
	}
	payload.Price = f.Price
	if d, err := decimal.NewFromString(price); err == nil {
		// out of float64 range stays text, JSON has no infinities
		if v := d.InexactFloat64(); !math.IsInf(v, 0) {
			payload.Price = v
		}
	}
	return payload
}
