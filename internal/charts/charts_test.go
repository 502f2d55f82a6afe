package charts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/internal/metrics"
)

func barSpec() dashboard.ChartSpec {
	return dashboard.ChartSpec{
		Anchor:           dashboard.ChartFlightsByAirline,
		Kind:             dashboard.ChartBar,
		Title:            "Vuelos por aerolínea",
		DatasetLabel:     "Vuelos",
		Labels:           []string{"Avianca", "LATAM"},
		Data:             []float64{4, 7},
		BackgroundColors: []string{"rgba(1, 2, 3, 0.7)", "rgba(4, 5, 6, 0.7)"},
		BorderColors:     []string{"rgba(1, 2, 3, 1)", "rgba(4, 5, 6, 1)"},
	}
}

func TestBuildConfig_Bar(t *testing.T) {
	cfg, err := BuildConfig(barSpec())
	require.NoError(t, err)

	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, []string{"Avianca", "LATAM"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 1)
	assert.Equal(t, []float64{4, 7}, cfg.Data.Datasets[0].Data)
	assert.Equal(t, []string{"rgba(1, 2, 3, 0.7)", "rgba(4, 5, 6, 0.7)"}, cfg.Data.Datasets[0].BackgroundColor)
	assert.True(t, cfg.Options.Responsive)
	assert.False(t, cfg.Options.MaintainAspectRatio)
	assert.True(t, cfg.Options.Scales["y"].BeginAtZero)
}

func TestBuildConfig_LineUsesSingleColor(t *testing.T) {
	spec := barSpec()
	spec.Kind = dashboard.ChartLine
	spec.BackgroundColors = []string{"rgba(1, 2, 3, 0.2)"}
	spec.BorderColors = []string{"rgba(1, 2, 3, 1)"}

	cfg, err := BuildConfig(spec)
	require.NoError(t, err)

	ds := cfg.Data.Datasets[0]
	assert.Equal(t, "rgba(1, 2, 3, 0.2)", ds.BackgroundColor)
	assert.Equal(t, "rgba(1, 2, 3, 1)", ds.BorderColor)
	require.NotNil(t, ds.Fill)
	assert.True(t, *ds.Fill)
}

func TestBuildConfig_EmptySeriesEncodesArrays(t *testing.T) {
	spec := barSpec()
	spec.Labels, spec.Data = nil, nil
	spec.BackgroundColors, spec.BorderColors = nil, nil

	cfg, err := BuildConfig(spec)
	require.NoError(t, err)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"labels":[]`)
	assert.Contains(t, string(raw), `"data":[]`)
}

func TestBuildConfig_Rejects(t *testing.T) {
	nan := barSpec()
	nan.Data = []float64{1, math.NaN()}
	_, err := BuildConfig(nan)
	assert.Error(t, err)

	unknown := barSpec()
	unknown.Kind = "radar"
	_, err = BuildConfig(unknown)
	assert.Error(t, err)

	mismatch := barSpec()
	mismatch.Data = []float64{1}
	_, err = BuildConfig(mismatch)
	assert.Error(t, err)
}

func TestRegistry_BuildAndDestroy(t *testing.T) {
	reg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
	r := NewRegistry(reg)

	inst, err := r.Build(barSpec())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ChartInstances))

	got, ok := r.Lookup(inst.ID())
	require.True(t, ok)
	assert.Equal(t, dashboard.ChartFlightsByAirline, got.Anchor())

	inst.Destroy()
	inst.Destroy()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.ChartInstances))

	_, ok = r.Lookup(inst.ID())
	assert.False(t, ok)
}

func TestRegistry_IndependentInstances(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Build(barSpec())
	require.NoError(t, err)
	second, err := r.Build(barSpec())
	require.NoError(t, err)

	assert.Equal(t, 2, r.Len())
	second.Destroy()
	assert.Equal(t, 1, r.Len())
}
