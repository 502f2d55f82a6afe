package charts

import (
	"sync"

	"github.com/google/uuid"

	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/internal/metrics"
)

// Registry holds live chart instances so the browser can fetch their configs
type Registry struct {
	mu      sync.RWMutex
	items   map[string]*Instance
	metrics *metrics.MetricsRegistry
}

// Ensure Registry implements dashboard.ChartRenderer
var _ dashboard.ChartRenderer = (*Registry)(nil)

func NewRegistry(reg *metrics.MetricsRegistry) *Registry {
	return &Registry{
		items:   make(map[string]*Instance),
		metrics: reg,
	}
}

// Build creates and registers a new instance
func (r *Registry) Build(spec dashboard.ChartSpec) (dashboard.ChartInstance, error) {
	cfg, err := BuildConfig(spec)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		id:       uuid.New().String(),
		anchor:   spec.Anchor,
		config:   cfg,
		registry: r,
	}

	r.mu.Lock()
	r.items[inst.id] = inst
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.ChartInstances.Inc()
	}
	return inst, nil
}

// Lookup returns a live instance
func (r *Registry) Lookup(id string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.items[id]
	return inst, ok
}

// Len returns the number of live instances
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	_, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if ok && r.metrics != nil {
		r.metrics.ChartInstances.Dec()
	}
}

// Instance is one built chart
type Instance struct {
	id       string
	anchor   dashboard.ChartID
	config   Config
	registry *Registry
	once     sync.Once
}

func (i *Instance) ID() string { return i.id }

func (i *Instance) Anchor() dashboard.ChartID { return i.anchor }

func (i *Instance) Config() Config { return i.config }

// Destroy unregisters the instance. Further calls do nothing.
func (i *Instance) Destroy() {
	i.once.Do(func() {
		i.registry.remove(i.id)
	})
}
