package dashboard

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/models/dtos"
)

// KPISlot is one display slot of the KPI panel
type KPISlot struct {
	Name  string
	Label string
	Value string
}

var kpiLabels = map[string]string{
	constants.SlotTotalFlights:  "Total de vuelos",
	constants.SlotFlightsToday:  "Vuelos hoy",
	constants.SlotActiveFlights: "Vuelos activos",
	constants.SlotTotalRevenue:  "Ingresos totales",
}

// KPIPanel is the counters region of a page
type KPIPanel struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewKPIPanel() *KPIPanel {
	return &KPIPanel{slots: make(map[string]string, len(constants.KPISlots))}
}

// Slot returns the text currently shown in a slot
func (p *KPIPanel) Slot(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots[name]
}

// Slots returns every slot in display order
func (p *KPIPanel) Slots() []KPISlot {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]KPISlot, 0, len(constants.KPISlots))
	for _, name := range constants.KPISlots {
		out = append(out, KPISlot{Name: name, Label: kpiLabels[name], Value: p.slots[name]})
	}
	return out
}

// write replaces all slots at once so a reader never sees a mix of old and new values
func (p *KPIPanel) write(values map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range constants.KPISlots {
		p.slots[name] = values[name]
	}
}

// KPIController fills the KPI panel
type KPIController struct {
	api      FlightsAPI
	panel    *KPIPanel
	notifier Notifier
}

func NewKPIController(api FlightsAPI, panel *KPIPanel, notifier Notifier) *KPIController {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &KPIController{api: api, panel: panel, notifier: notifier}
}

// Refresh fetches the snapshot and rewrites every slot. On failure every slot shows the error indicator.
func (c *KPIController) Refresh(ctx context.Context) error {
	snap, err := c.api.GetKPIs(ctx)
	if err != nil {
		logging.Warn("KPI refresh failed", "error", err, "message", apiclient.MessageOf(err))
		c.panel.write(fillAll(constants.PlaceholderError))
		c.notifier.Notify(ctx, constants.NoticeDanger, constants.MsgKPILoadFailed)
		return err
	}
	c.panel.write(FormatKPIs(snap))
	return nil
}

// FormatKPIs renders a snapshot into slot text. Absent metrics show the missing placeholder.
func FormatKPIs(snap *dtos.KPISnapshot) map[string]string {
	values := fillAll(constants.PlaceholderMissing)
	if snap == nil {
		return values
	}
	if snap.TotalFlights != nil {
		values[constants.SlotTotalFlights] = strconv.FormatInt(*snap.TotalFlights, 10)
	}
	if snap.FlightsToday != nil {
		values[constants.SlotFlightsToday] = strconv.FormatInt(*snap.FlightsToday, 10)
	}
	if snap.ActiveFlights != nil {
		values[constants.SlotActiveFlights] = strconv.FormatInt(*snap.ActiveFlights, 10)
	}
	if snap.TotalRevenue != nil {
		values[constants.SlotTotalRevenue] = FormatMoney(*snap.TotalRevenue)
	}
	return values
}

// FormatMoney renders an amount as dollars with two decimals
func FormatMoney(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(2)
}

func fillAll(text string) map[string]string {
	values := make(map[string]string, len(constants.KPISlots))
	for _, name := range constants.KPISlots {
		values[name] = text
	}
	return values
}
