package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/models/dtos"
)

// ChartID names a chart anchor
type ChartID string

// ChartKind is the chart type
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartDoughnut ChartKind = "doughnut"
	ChartLine     ChartKind = "line"
)

const (
	ChartFlightsByAirline ChartID = "flightsByAirline"
	ChartFlightStatus     ChartID = "flightStatus"
	ChartDailyFlights     ChartID = "dailyFlights"
)

// ChartDef describes one chart and where its series comes from
type ChartDef struct {
	ID           ChartID
	Kind         ChartKind
	Title        string
	DatasetLabel string
	series       func(*dtos.ChartData) *dtos.Series
}

// Series picks this chart's series out of a bundle
func (d ChartDef) Series(data *dtos.ChartData) *dtos.Series {
	if data == nil || d.series == nil {
		return nil
	}
	return d.series(data)
}

// FlightCharts are the three dashboard charts
var FlightCharts = []ChartDef{
	{
		ID: ChartFlightsByAirline, Kind: ChartBar,
		Title: "Vuelos por aerolínea", DatasetLabel: "Vuelos",
		series: func(d *dtos.ChartData) *dtos.Series { return d.FlightsByAirline },
	},
	{
		ID: ChartFlightStatus, Kind: ChartDoughnut,
		Title: "Estado de vuelos", DatasetLabel: "Vuelos",
		series: func(d *dtos.ChartData) *dtos.Series { return d.FlightStatus },
	},
	{
		ID: ChartDailyFlights, Kind: ChartLine,
		Title: "Vuelos diarios", DatasetLabel: "Vuelos por día",
		series: func(d *dtos.ChartData) *dtos.Series { return d.DailyFlights },
	},
}

// ChartSpec is everything a renderer needs to build one chart
type ChartSpec struct {
	Anchor           ChartID
	Kind             ChartKind
	Title            string
	DatasetLabel     string
	Labels           []string
	Data             []float64
	BackgroundColors []string
	BorderColors     []string
}

// ChartInstance is a live chart that must be destroyed before its anchor is reused
type ChartInstance interface {
	ID() string
	Destroy()
}

// ChartRenderer builds chart instances
type ChartRenderer interface {
	Build(spec ChartSpec) (ChartInstance, error)
}

// ChartAnchorState is a point-in-time copy of a chart anchor
type ChartAnchorState struct {
	Def         ChartDef
	Loading     bool
	InstanceID  string
	Placeholder string
	Error       string
}

// ChartAnchor is one chart region of a page
type ChartAnchor struct {
	Def ChartDef

	mu          sync.Mutex
	loading     bool
	instanceID  string
	placeholder string
	errText     string
}

func NewChartAnchor(def ChartDef) *ChartAnchor {
	return &ChartAnchor{Def: def}
}

// NewChartAnchors creates anchors for every dashboard chart
func NewChartAnchors() []*ChartAnchor {
	out := make([]*ChartAnchor, 0, len(FlightCharts))
	for _, def := range FlightCharts {
		out = append(out, NewChartAnchor(def))
	}
	return out
}

func (a *ChartAnchor) Snapshot() ChartAnchorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ChartAnchorState{
		Def:         a.Def,
		Loading:     a.loading,
		InstanceID:  a.instanceID,
		Placeholder: a.placeholder,
		Error:       a.errText,
	}
}

func (a *ChartAnchor) setLoading(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = v
}

func (a *ChartAnchor) show(instanceID, placeholder string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instanceID = instanceID
	a.placeholder = placeholder
	a.errText = ""
	a.loading = false
}

func (a *ChartAnchor) fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instanceID = ""
	a.placeholder = ""
	a.errText = msg
	a.loading = false
}

func (a *ChartAnchor) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instanceID = ""
	a.placeholder = ""
	a.loading = false
}

// ChartController owns the chart instances of a page, keyed by anchor
type ChartController struct {
	api      FlightsAPI
	renderer ChartRenderer
	anchors  []*ChartAnchor
	notifier Notifier

	mu        sync.Mutex
	theme     constants.Theme
	instances map[ChartID]ChartInstance
	closed    bool
}

func NewChartController(api FlightsAPI, renderer ChartRenderer, anchors []*ChartAnchor, notifier Notifier, theme constants.Theme) *ChartController {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &ChartController{
		api:       api,
		renderer:  renderer,
		anchors:   anchors,
		notifier:  notifier,
		theme:     theme,
		instances: make(map[ChartID]ChartInstance, len(anchors)),
	}
}

// SetTheme changes the palette used by the next rebuild
func (c *ChartController) SetTheme(theme constants.Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.theme = theme
}

// Instance returns the live instance of an anchor
func (c *ChartController) Instance(id ChartID) (ChartInstance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.instances[id]
	return inst, ok
}

// Refresh fetches the series bundle and rebuilds every chart.
// A fetch failure leaves existing charts as they were.
func (c *ChartController) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return ErrPageClosed
	}
	for _, a := range c.anchors {
		a.setLoading(true)
	}

	data, err := c.api.GetChartData(ctx)
	if err != nil {
		for _, a := range c.anchors {
			a.setLoading(false)
		}
		logging.Warn("Chart data fetch failed", "error", err, "message", apiclient.MessageOf(err))
		c.notifier.Notify(ctx, constants.NoticeDanger, constants.MsgChartLoadFailed)
		return err
	}

	var errs []error
	for _, a := range c.anchors {
		err := c.rebuild(a, a.Def.Series(data))
		if errors.Is(err, ErrPageClosed) {
			return err
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// rebuild destroys the anchor's previous instance and builds a new one from series
func (c *ChartController) rebuild(anchor *ChartAnchor, series *dtos.Series) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// the page may have closed while the data was in flight
	if c.closed {
		return ErrPageClosed
	}

	id := anchor.Def.ID
	if old, ok := c.instances[id]; ok {
		old.Destroy()
		delete(c.instances, id)
	}

	spec := c.specFor(anchor.Def, series)
	inst, err := c.renderer.Build(spec)
	if err != nil {
		logging.Error("Chart build failed", "chart", id, "error", err)
		anchor.fail(constants.MsgChartBuildError)
		return fmt.Errorf("chart %s: %w", id, err)
	}
	c.instances[id] = inst

	placeholder := ""
	if len(spec.Labels) == 0 {
		placeholder = constants.PlaceholderNoData
	}
	anchor.show(inst.ID(), placeholder)
	return nil
}

func (c *ChartController) specFor(def ChartDef, series *dtos.Series) ChartSpec {
	n := series.Len()
	if series != nil && len(series.Labels) != len(series.Data) {
		logging.Warn("Chart series length mismatch, truncating",
			"chart", def.ID,
			"labels", len(series.Labels),
			"data", len(series.Data),
		)
	}

	spec := ChartSpec{
		Anchor:       def.ID,
		Kind:         def.Kind,
		Title:        def.Title,
		DatasetLabel: def.DatasetLabel,
		Labels:       make([]string, n),
		Data:         make([]float64, n),
	}
	if n > 0 {
		copy(spec.Labels, series.Labels[:n])
		copy(spec.Data, series.Data[:n])
	}

	if def.Kind == ChartLine {
		base := Palette(c.theme)[0]
		spec.BackgroundColors = []string{base.RGBA(0.2)}
		spec.BorderColors = []string{base.RGBA(1)}
		return spec
	}
	for _, col := range PaletteFor(c.theme, n) {
		spec.BackgroundColors = append(spec.BackgroundColors, col.RGBA(0.7))
		spec.BorderColors = append(spec.BorderColors, col.RGBA(1))
	}
	return spec
}

func (c *ChartController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close destroys every owned instance. Later refreshes build nothing.
func (c *ChartController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, inst := range c.instances {
		inst.Destroy()
		delete(c.instances, id)
	}
	for _, a := range c.anchors {
		a.clear()
	}
}
