package dtos

// KPISnapshot holds the dashboard header counters.
// A nil field means the server did not report that metric.
type KPISnapshot struct {
	TotalFlights  *int64   `json:"total_flights"`
	FlightsToday  *int64   `json:"flights_today"`
	ActiveFlights *int64   `json:"active_flights"`
	TotalRevenue  *float64 `json:"total_revenue"`
}
