package charts

import (
	"fmt"
	"math"

	"infinite-experiment/skyboard/internal/dashboard"
)

// BuildConfig turns a chart spec into a Chart.js configuration
func BuildConfig(spec dashboard.ChartSpec) (Config, error) {
	if len(spec.Labels) != len(spec.Data) {
		return Config{}, fmt.Errorf("labels and data differ in length: %d != %d", len(spec.Labels), len(spec.Data))
	}
	for i, v := range spec.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Config{}, fmt.Errorf("value %d of %q is not finite", i, spec.Anchor)
		}
	}

	cfg := Config{
		Type: string(spec.Kind),
		Data: Data{Labels: nonNil(spec.Labels)},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Plugins: Plugins{
				Title: Title{Display: spec.Title != "", Text: spec.Title},
			},
		},
	}
	ds := Dataset{
		Label:       spec.DatasetLabel,
		Data:        nonNilFloats(spec.Data),
		BorderWidth: 1,
	}

	switch spec.Kind {
	case dashboard.ChartBar:
		ds.BackgroundColor = spec.BackgroundColors
		ds.BorderColor = spec.BorderColors
		cfg.Options.Plugins.Legend = Legend{Display: false}
		cfg.Options.Scales = map[string]Scale{"y": {BeginAtZero: true, Ticks: &Ticks{Precision: 0}}}
	case dashboard.ChartDoughnut:
		ds.BackgroundColor = spec.BackgroundColors
		ds.BorderColor = spec.BorderColors
		cfg.Options.Plugins.Legend = Legend{Display: true, Position: "right"}
	case dashboard.ChartLine:
		fill := true
		ds.BackgroundColor = first(spec.BackgroundColors)
		ds.BorderColor = first(spec.BorderColors)
		ds.BorderWidth = 2
		ds.Fill = &fill
		ds.Tension = 0.3
		cfg.Options.Plugins.Legend = Legend{Display: true, Position: "top"}
		cfg.Options.Scales = map[string]Scale{"y": {BeginAtZero: true, Ticks: &Ticks{Precision: 0}}}
	default:
		return Config{}, fmt.Errorf("unsupported chart type %q", spec.Kind)
	}

	cfg.Data.Datasets = []Dataset{ds}
	return cfg, nil
}

func first(colors []string) any {
	if len(colors) == 0 {
		return nil
	}
	return colors[0]
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
