package dtos

// Series is one chart's labels and values; Labels[i] belongs to Data[i]
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Len returns the number of usable points
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return min(len(s.Labels), len(s.Data))
}

// ChartData is the bundle returned by GET /api/chart_data
type ChartData struct {
	FlightsByAirline *Series `json:"vuelosPorAerolinea"`
	FlightStatus     *Series `json:"estadoVuelos"`
	DailyFlights     *Series `json:"vuelosDiarios"`
}
