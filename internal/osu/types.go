package osu

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Document is a JSON:API style envelope. Data may hold a single resource or a list.
type Document struct {
	Data json.RawMessage `json:"data"`
}

// Resource is a single JSON:API resource
type Resource struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

var (
	ErrNoData       = errors.New("'data' key is missing or empty, check your query again for these parameters")
	ErrNoAttributes = errors.New("'attributes' key is missing in data")
)

// Resources returns the resources in the document, wrapping a single resource in a slice.
func (d Document) Resources() ([]Resource, error) {
	raw := bytes.TrimSpace(d.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrNoData
	}
	if raw[0] == '[' {
		var list []Resource
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, ErrNoData
		}
		return list, nil
	}
	var single Resource
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []Resource{single}, nil
}

// FirstAttributes decodes the attributes of the first resource into v.
func (d Document) FirstAttributes(v interface{}) error {
	resources, err := d.Resources()
	if err != nil {
		return err
	}
	if len(resources[0].Attributes) == 0 {
		return ErrNoAttributes
	}
	return json.Unmarshal(resources[0].Attributes, v)
}

// Text accepts a JSON string or number and keeps its textual form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

type Term struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	CalendarYear string `json:"calendarYear"`
	Season       string `json:"season"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

type Stop struct {
	StopID      Text    `json:"stopID"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Route struct {
	Description string `json:"description"`
	Color       string `json:"color"`
	Stops       []Stop `json:"stops"`
}

type Arrival struct {
	VehicleID Text   `json:"vehicleID"`
	ETA       string `json:"eta"`
}

type Arrivals struct {
	Arrivals []Arrival `json:"arrivals"`
}

type Vehicle struct {
	Name    string `json:"name"`
	Heading Text   `json:"heading"`
}

// StopReport is one line of a route report
type StopReport struct {
	RouteID     string
	RouteName   string
	StopID      string
	StopName    string
	VehicleName string
	VehicleID   string
	Heading     string
	ETA         string
	Problems    []string // Missing fields encountered while building the line
}
