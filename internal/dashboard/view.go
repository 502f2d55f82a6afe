package dashboard

import (
	"context"
	"sync"
	"time"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/models/dtos"
)

// Widget identifies one refreshable region of a page
type Widget string

const (
	WidgetTable  Widget = "table"
	WidgetKPI    Widget = "kpi"
	WidgetCharts Widget = "charts"
)

// WidgetSet records which widgets a page carries
type WidgetSet uint8

const (
	hasTable WidgetSet = 1 << iota
	hasKPI
	hasCharts
)

func (s WidgetSet) Has(w Widget) bool {
	switch w {
	case WidgetTable:
		return s&hasTable != 0
	case WidgetKPI:
		return s&hasKPI != 0
	case WidgetCharts:
		return s&hasCharts != 0
	}
	return false
}

// Widgets lists the present widgets in refresh order
func (s WidgetSet) Widgets() []Widget {
	out := make([]Widget, 0, 3)
	for _, w := range []Widget{WidgetTable, WidgetKPI, WidgetCharts} {
		if s.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Notifier shows transient messages to the user
type Notifier interface {
	Notify(ctx context.Context, level constants.NoticeLevel, message string)
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer that always approves, used when the approval already happened upstream
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// View binds the regions a page rendered. A nil region is absent from the page.
type View struct {
	Table    *TableAnchor
	KPIs     *KPIPanel
	Charts   []*ChartAnchor
	Form     *FormModal
	Notifier Notifier
	Theme    constants.Theme
	Location *time.Location
}

// Presence reports which widgets the view carries
func (v *View) Presence() WidgetSet {
	var s WidgetSet
	if v.Table != nil {
		s |= hasTable
	}
	if v.KPIs != nil {
		s |= hasKPI
	}
	if len(v.Charts) > 0 {
		s |= hasCharts
	}
	return s
}

func (v *View) location() *time.Location {
	if v.Location == nil {
		return time.Local
	}
	return v.Location
}

func (v *View) notifier() Notifier {
	if v.Notifier == nil {
		return discardNotifier{}
	}
	return v.Notifier
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, constants.NoticeLevel, string) {}

// NoticeLog is an in-memory Notifier
type NoticeLog struct {
	mu      sync.Mutex
	notices []dtos.Notice
}

func (l *NoticeLog) Notify(_ context.Context, level constants.NoticeLevel, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, dtos.Notice{Level: level, Message: message, CreatedAt: time.Now()})
}

// Notices returns a copy of everything recorded so far
func (l *NoticeLog) Notices() []dtos.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]dtos.Notice(nil), l.notices...)
}

// Count returns how many notices of the given level were recorded
func (l *NoticeLog) Count(level constants.NoticeLevel) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, notice := range l.notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}
