package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/models/dtos"
)

const (
	flightListPath   = "/api/flights"
	flightCollection = "/api/vuelos"
	flightItemPrefix = "/api/vuelos/"
	kpiPath          = "/api/kpis"
	chartDataPath    = "/api/chart_data"
)

// TableQuery carries the server-side paging, sorting and search parameters of the flights table
type TableQuery struct {
	Draw        int
	Start       int
	Length      int
	Search      string
	OrderColumn int
	OrderDir    string
	Columns     []string
}

// Values encodes the query the way the list endpoint expects it
func (q TableQuery) Values() url.Values {
	v := url.Values{}
	v.Set("draw", strconv.Itoa(q.Draw))
	v.Set("start", strconv.Itoa(q.Start))
	v.Set("length", strconv.Itoa(q.Length))
	v.Set("search[value]", q.Search)
	v.Set("order[0][column]", strconv.Itoa(q.OrderColumn))
	dir := strings.ToLower(q.OrderDir)
	if dir != "desc" {
		dir = "asc"
	}
	v.Set("order[0][dir]", dir)
	for i, col := range q.Columns {
		v.Set("columns["+strconv.Itoa(i)+"][data]", col)
	}
	return v
}

// FlightPath returns the item endpoint of a flight record
func FlightPath(recordID string) string {
	return flightItemPrefix + url.PathEscape(recordID)
}

// ListFlights fetches one table page
func (c *Client) ListFlights(ctx context.Context, q TableQuery) (*dtos.FlightPage, error) {
	var page dtos.FlightPage
	if err := c.Request(ctx, http.MethodGet, flightListPath+"?"+q.Values().Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetFlight fetches one flight for editing
func (c *Client) GetFlight(ctx context.Context, recordID string) (*dtos.Flight, error) {
	if err := requireID(recordID); err != nil {
		return nil, err
	}
	var flight dtos.Flight
	if err := c.Request(ctx, http.MethodGet, FlightPath(recordID), nil, &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

// CreateFlight posts a new flight to the collection endpoint
func (c *Client) CreateFlight(ctx context.Context, payload dtos.FlightPayload) (*dtos.MessageResponse, error) {
	var resp dtos.MessageResponse
	if err := c.Request(ctx, http.MethodPost, flightCollection, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateFlight replaces an existing flight
func (c *Client) UpdateFlight(ctx context.Context, recordID string, payload dtos.FlightPayload) (*dtos.MessageResponse, error) {
	if err := requireID(recordID); err != nil {
		return nil, err
	}
	var resp dtos.MessageResponse
	if err := c.Request(ctx, http.MethodPut, FlightPath(recordID), payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFlight removes a flight
func (c *Client) DeleteFlight(ctx context.Context, recordID string) (*dtos.MessageResponse, error) {
	if err := requireID(recordID); err != nil {
		return nil, err
	}
	var resp dtos.MessageResponse
	if err := c.Request(ctx, http.MethodDelete, FlightPath(recordID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetKPIs fetches the KPI snapshot
func (c *Client) GetKPIs(ctx context.Context) (*dtos.KPISnapshot, error) {
	var snap dtos.KPISnapshot
	if err := c.Request(ctx, http.MethodGet, kpiPath, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetChartData fetches the three chart series
func (c *Client) GetChartData(ctx context.Context) (*dtos.ChartData, error) {
	var data dtos.ChartData
	if err := c.Request(ctx, http.MethodGet, chartDataPath, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func requireID(recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return &APIError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: constants.MsgMissingRecordID,
		}
	}
	return nil
}

// Ping checks that the flights API answers. Any non-network response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodGet, kpiPath, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == constants.ErrCodeHTTPError {
		return nil
	}
	return err
}
