package dashboard

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/metrics"
)

// Trigger is the event that caused a refresh
type Trigger string

const (
	TriggerLoad   Trigger = "load"
	TriggerCreate Trigger = "create"
	TriggerUpdate Trigger = "update"
	TriggerDelete Trigger = "delete"
)

// WidgetResult is the outcome of one widget's refresh
type WidgetResult struct {
	Widget   Widget
	Err      error
	Duration time.Duration
}

// Report collects the per-widget outcomes of one RefreshAll
type Report struct {
	Trigger Trigger
	Results []WidgetResult
}

// Ran reports whether the widget was refreshed
func (r Report) Ran(w Widget) bool {
	for _, res := range r.Results {
		if res.Widget == w {
			return true
		}
	}
	return false
}

// Err returns the widget's error, nil when it succeeded or did not run
func (r Report) Err(w Widget) error {
	for _, res := range r.Results {
		if res.Widget == w {
			return res.Err
		}
	}
	return nil
}

// Failed lists the widgets that returned an error
func (r Report) Failed() []Widget {
	var out []Widget
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res.Widget)
		}
	}
	return out
}

// OK reports whether every widget that ran succeeded
func (r Report) OK() bool {
	return len(r.Failed()) == 0
}

// Refresher invokes the refresh of every widget present on the page
type Refresher struct {
	presence WidgetSet
	list     *ListController
	kpis     *KPIController
	charts   *ChartController
	metrics  *metrics.MetricsRegistry
}

// NewRefresher computes the presence set once. Controllers of absent widgets may be nil.
func NewRefresher(presence WidgetSet, list *ListController, kpis *KPIController, charts *ChartController, reg *metrics.MetricsRegistry) *Refresher {
	return &Refresher{
		presence: presence,
		list:     list,
		kpis:     kpis,
		charts:   charts,
		metrics:  reg,
	}
}

// Presence returns the widget set this refresher was built for
func (r *Refresher) Presence() WidgetSet {
	return r.presence
}

// RefreshAll starts every present widget's refresh concurrently and waits for all of them.
// One widget failing or panicking never stops the others.
func (r *Refresher) RefreshAll(ctx context.Context, trigger Trigger) Report {
	widgets := r.presence.Widgets()
	results := make([]WidgetResult, len(widgets))

	var g errgroup.Group
	for i, w := range widgets {
		g.Go(func() error {
			results[i] = r.run(ctx, w, trigger)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Trigger: trigger}
	for _, res := range results {
		if res.Widget != "" {
			report.Results = append(report.Results, res)
		}
	}

	logging.Info("Widgets refreshed",
		"trigger", trigger,
		"widgets", len(report.Results),
		"failed", report.Failed(),
	)
	return report
}

func (r *Refresher) run(ctx context.Context, w Widget, trigger Trigger) (res WidgetResult) {
	res.Widget = w
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			logging.Error("Widget refresh panicked",
				"widget", w,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			res.Err = fmt.Errorf("%s refresh panicked: %v", w, p)
		}
		res.Duration = time.Since(start)
		r.observe(w, trigger, res)
	}()

	res.Err = r.refreshWidget(ctx, w, trigger)
	return res
}

func (r *Refresher) refreshWidget(ctx context.Context, w Widget, trigger Trigger) error {
	switch w {
	case WidgetTable:
		if r.list == nil {
			return nil
		}
		switch trigger {
		case TriggerLoad:
			return r.list.Initialize(ctx)
		case TriggerCreate:
			return r.list.Reload(ctx, true)
		default:
			return r.list.Reload(ctx, false)
		}
	case WidgetKPI:
		if r.kpis == nil {
			return nil
		}
		return r.kpis.Refresh(ctx)
	case WidgetCharts:
		if r.charts == nil {
			return nil
		}
		return r.charts.Refresh(ctx)
	}
	return nil
}

func (r *Refresher) observe(w Widget, trigger Trigger, res WidgetResult) {
	if res.Err != nil {
		logging.Warn("Widget refresh failed", "widget", w, "trigger", trigger, "error", res.Err)
	}
	if r.metrics == nil {
		return
	}
	outcome := "success"
	if res.Err != nil {
		outcome = "error"
	}
	r.metrics.WidgetRefreshTotal.WithLabelValues(string(w), string(trigger), outcome).Inc()
	r.metrics.WidgetRefreshDuration.WithLabelValues(string(w)).Observe(res.Duration.Seconds())
}

// Page wires a view to its controllers
type Page struct {
	View      *View
	Form      *FormController
	List      *ListController
	KPIs      *KPIController
	Charts    *ChartController
	Refresher *Refresher

	closeOnce sync.Once
}

// NewPage builds controllers for the regions present in view
func NewPage(view *View, api FlightsAPI, renderer ChartRenderer, reg *metrics.MetricsRegistry) *Page {
	p := &Page{View: view}
	notifier := view.notifier()
	loc := view.location()

	if view.Table != nil {
		p.List = NewListController(api, view.Table, notifier, loc)
	}
	if view.KPIs != nil {
		p.KPIs = NewKPIController(api, view.KPIs, notifier)
	}
	if len(view.Charts) > 0 && renderer != nil {
		p.Charts = NewChartController(api, renderer, view.Charts, notifier, view.Theme)
	}
	p.Refresher = NewRefresher(view.Presence(), p.List, p.KPIs, p.Charts, reg)

	modal := view.Form
	if modal == nil {
		// delete actions still work on pages without a modal
		modal = NewFormModal()
	}
	p.Form = NewFormController(api, modal, notifier, loc)
	p.Form.refresher = p.Refresher
	if p.List != nil {
		p.List.OnAction(p.Form.HandleRowAction)
	}
	return p
}

// ErrPageClosed is returned by controllers of a page that was already closed
var ErrPageClosed = errors.New("page is closed")

// Load runs the initial refresh of every present widget
func (p *Page) Load(ctx context.Context) Report {
	return p.Refresher.RefreshAll(ctx, TriggerLoad)
}

// Close releases chart instances and the table binding
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		if p.Charts != nil {
			p.Charts.Close()
		}
		if p.List != nil {
			p.List.Close()
		}
	})
}
