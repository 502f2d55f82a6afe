package dtos

// Flight is one flight row as exposed by the flights API.
// RecordID is assigned by the server; an empty RecordID means the record was never persisted.
type Flight struct {
	RecordID    string   `json:"_id,omitempty"`
	FlightCode  string   `json:"id_vuelo"`
	Airline     string   `json:"aerolinea"`
	Origin      string   `json:"origen"`
	Destination string   `json:"destino"`
	DepartureAt string   `json:"fecha_salida"`
	Status      string   `json:"estado"`
	Price       *float64 `json:"precio,omitempty"`

	// ActionsHTML is the server-rendered actions cell of a list row, when sent
	ActionsHTML string `json:"actions,omitempty"`
}

// FlightPayload is the body sent on create and update.
// Price is a JSON number when the entered text is numeric, the raw text otherwise.
type FlightPayload struct {
	FlightCode  string `json:"id_vuelo"`
	Airline     string `json:"aerolinea"`
	Origin      string `json:"origen"`
	Destination string `json:"destino"`
	DepartureAt string `json:"fecha_salida"`
	Status      string `json:"estado"`
	Price       any    `json:"precio,omitempty"`
}

// FlightPage is the server-driven table page returned by GET /api/flights
type FlightPage struct {
	Draw            int      `json:"draw"`
	RecordsTotal    int      `json:"recordsTotal"`
	RecordsFiltered int      `json:"recordsFiltered"`
	Data            []Flight `json:"data"`
}

// MessageResponse is returned by every mutation endpoint, on success and failure
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
