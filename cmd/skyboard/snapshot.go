package main

import (
	"github.com/spf13/cobra"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/charts"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/internal/models/dtos"
)

type widgetOutput struct {
	Widget     string `json:"widget"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type chartOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Rendered    bool   `json:"rendered"`
	Placeholder string `json:"placeholder,omitempty"`
	Error       string `json:"error,omitempty"`
}

type snapshotOutput struct {
	KPIs    map[string]string    `json:"kpis"`
	Flights []dashboard.TableRow `json:"flights"`
	Total   int                  `json:"records_total"`
	Charts  []chartOutput        `json:"charts"`
	Widgets []widgetOutput       `json:"widgets"`
	Notices []dtos.Notice        `json:"notices"`
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var (
		length int
		search string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load every widget once and print what the dashboard would show",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			notices := &dashboard.NoticeLog{}
			view := &dashboard.View{
				Table:    dashboard.NewTableAnchor("flightsTable"),
				KPIs:     dashboard.NewKPIPanel(),
				Charts:   dashboard.NewChartAnchors(),
				Notifier: notices,
				Theme:    constants.Theme(cfg.DefaultTheme),
				Location: loc,
			}
			client := apiclient.NewClient(cfg.APIBaseURL, nil)
			page := dashboard.NewPage(view, client, charts.NewRegistry(nil), nil)
			defer page.Close()

			report := page.Load(cmd.Context())
			if length != dashboard.DefaultTableState.Length || search != "" {
				st := dashboard.DefaultTableState
				st.Length = length
				st.Search = search
				_ = page.List.Query(cmd.Context(), st)
			}

			out := snapshotOutput{
				KPIs:    make(map[string]string, len(constants.KPISlots)),
				Notices: notices.Notices(),
			}
			for _, slot := range view.KPIs.Slots() {
				out.KPIs[slot.Name] = slot.Value
			}
			table := view.Table.Snapshot()
			out.Flights = table.Rows
			out.Total = table.RecordsTotal
			for _, anchor := range view.Charts {
				s := anchor.Snapshot()
				out.Charts = append(out.Charts, chartOutput{
					ID:          string(s.Def.ID),
					Title:       s.Def.Title,
					Rendered:    s.InstanceID != "",
					Placeholder: s.Placeholder,
					Error:       s.Error,
				})
			}
			for _, res := range report.Results {
				w := widgetOutput{
					Widget:     string(res.Widget),
					OK:         res.Err == nil,
					DurationMS: res.Duration.Milliseconds(),
				}
				if res.Err != nil {
					w.Error = apiclient.MessageOf(res.Err)
				}
				out.Widgets = append(out.Widgets, w)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().IntVar(&length, "length", dashboard.DefaultTableState.Length, "Table page length (10, 25, 50 or 100)")
	cmd.Flags().StringVar(&search, "search", "", "Table search text")
	return cmd
}
