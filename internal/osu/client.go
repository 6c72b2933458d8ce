package osu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/RanaTayyab/osu-api-manager/internal/api"
)

const (
	EndpointBeaverBus = "beaver_bus"
	EndpointTerms     = "terms"
	EndpointTextbooks = "textbooks"
	EndpointRoutes    = "routes"
	EndpointArrivals  = "arrivals"
	EndpointVehicles  = "vehicles"
)

// Caller issues requests against named endpoints
type Caller interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
}

// Client runs the multi-call flows on top of a Caller.
type Client struct {
	caller Caller
}

func New(caller Caller) *Client {
	return &Client{caller: caller}
}

func (c *Client) document(ctx context.Context, req api.Request) (*Document, error) {
	res, err := c.caller.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := res.Decode(&doc); err != nil {
		return nil, errors.WithMessagef(err, "could not decode %s response", req.Endpoint)
	}
	return &doc, nil
}

// BeaverBus returns the raw Beaver Bus payload
func (c *Client) BeaverBus(ctx context.Context) (*api.Response, error) {
	return c.caller.Do(ctx, api.Request{Endpoint: EndpointBeaverBus})
}

// Terms lists the terms, optionally restricted to the ones covering date (yyyy-mm-dd).
func (c *Client) Terms(ctx context.Context, date string) ([]Term, error) {
	params := map[string]string{}
	if date != "" {
		params["date"] = date
	}

	doc, err := c.document(ctx, api.Request{Endpoint: EndpointTerms, Params: params})
	if err != nil {
		return nil, err
	}

	resources, err := doc.Resources()
	if err != nil {
		return nil, err
	}

	terms := make([]Term, 0, len(resources))
	for _, r := range resources {
		if len(r.Attributes) == 0 {
			return nil, ErrNoAttributes
		}
		var term Term
		if err := json.Unmarshal(r.Attributes, &term); err != nil {
			return nil, errors.WithMessage(err, "could not decode term")
		}
		terms = append(terms, term)
	}
	return terms, nil
}

// TextbookQuery is the term a textbook search ran against
type TextbookQuery struct {
	AcademicYear string
	Term         string
}

// TextbooksForDate resolves the term covering date and searches the textbooks for it.
func (c *Client) TextbooksForDate(ctx context.Context, date string) (*TextbookQuery, *api.Response, error) {
	terms, err := c.Terms(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	first := terms[0]
	if first.CalendarYear == "" {
		return nil, nil, errors.New("'calendarYear' attribute is missing or empty")
	}
	if first.Season == "" {
		return nil, nil, errors.New("'season' attribute is missing or empty")
	}

	query := &TextbookQuery{AcademicYear: first.CalendarYear, Term: first.Season}
	slog.Debug("searching textbooks", "academicYear", query.AcademicYear, "term", query.Term)

	res, err := c.caller.Do(ctx, api.Request{
		Endpoint: EndpointTextbooks,
		Params:   map[string]string{"academicYear": query.AcademicYear, "term": query.Term},
	})
	if err != nil {
		return query, nil, err
	}
	return query, res, nil
}

// RouteReport lists, for every stop of a route, the next arriving vehicle, its heading and ETA.
// Failures on a single stop are recorded on that line and do not abort the report.
func (c *Client) RouteReport(ctx context.Context, routeID string) ([]StopReport, error) {
	doc, err := c.document(ctx, api.Request{Endpoint: EndpointRoutes, Path: []string{routeID}})
	if err != nil {
		return nil, err
	}

	var route Route
	if err := doc.FirstAttributes(&route); err != nil {
		return nil, errors.WithMessage(err, "invalid route")
	}

	reports := make([]StopReport, 0, len(route.Stops))
	for _, stop := range route.Stops {
		line := StopReport{RouteID: routeID, RouteName: route.Description}
		if route.Description == "" {
			line.Problems = append(line.Problems, "'description' key is missing in route attributes")
		}
		if stop.StopID == "" || stop.Description == "" {
			line.Problems = append(line.Problems, "'stopID' or 'description' key is missing in stop object")
			reports = append(reports, line)
			continue
		}
		line.StopID = string(stop.StopID)
		line.StopName = stop.Description

		c.fillArrival(ctx, &line)
		reports = append(reports, line)
	}

	return reports, nil
}

func (c *Client) fillArrival(ctx context.Context, line *StopReport) {
	doc, err := c.document(ctx, api.Request{
		Endpoint: EndpointArrivals,
		Params:   map[string]string{"stopID": line.StopID, "routeID": line.RouteID},
	})
	if err != nil {
		line.Problems = append(line.Problems, err.Error())
		return
	}

	var arrivals Arrivals
	if err := doc.FirstAttributes(&arrivals); err != nil || len(arrivals.Arrivals) == 0 {
		line.Problems = append(line.Problems, "'arrivals' key is missing or empty in arrivals attributes")
		return
	}

	first := arrivals.Arrivals[0]
	if first.VehicleID == "" || first.ETA == "" {
		line.Problems = append(line.Problems, "'vehicleID' or 'eta' key is missing in the first arrival object")
		return
	}
	line.VehicleID = string(first.VehicleID)
	line.ETA = first.ETA

	doc, err = c.document(ctx, api.Request{Endpoint: EndpointVehicles, Path: []string{line.VehicleID}})
	if err != nil {
		line.Problems = append(line.Problems, err.Error())
		return
	}

	var vehicle Vehicle
	if err := doc.FirstAttributes(&vehicle); err != nil || vehicle.Name == "" || vehicle.Heading == "" {
		line.Problems = append(line.Problems, "'name' or 'heading' key is missing in vehicles attributes")
		return
	}
	line.VehicleName = vehicle.Name
	line.Heading = string(vehicle.Heading)
}

// String renders the line the way the menu prints it
func (r StopReport) String() string {
	return fmt.Sprintf("Route ID: %s, Route Name: %s, Stop ID: %s, Stop Name: %s, Vehicle Name: %s, Vehicle Number: %s, Heading: %s, ETA for arrival to Stop: %s",
		r.RouteID, r.RouteName, r.StopID, r.StopName, r.VehicleName, r.VehicleID, r.Heading, r.ETA)
}
