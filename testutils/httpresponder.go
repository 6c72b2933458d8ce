package testutils

import (
	"net/http"

	"github.com/jarcoal/httpmock"
)

const (
	RouteID   = "7"
	VehicleID = "55"
)

func mustJsonResponder(status int, body interface{}) httpmock.Responder {
	responder, err := httpmock.NewJsonResponder(status, body)
	if err != nil {
		panic(err)
	}
	return responder
}

var AuthResponder = mustJsonResponder(http.StatusOK, map[string]interface{}{"access_token": "ya29.Gl0UBZ3", "expires_in": 3600})

var UnauthorizedResponder = httpmock.NewStringResponder(http.StatusUnauthorized, "")

var NotFoundResponder = httpmock.NewStringResponder(http.StatusNotFound, "")

var TermsResponder = mustJsonResponder(http.StatusOK, map[string]interface{}{
	"data": []interface{}{
		map[string]interface{}{
			"id":   "202401",
			"type": "term",
			"attributes": map[string]string{
				"code":         "202401",
				"description":  "Fall 2023",
				"calendarYear": "2023",
				"season":       "Fall",
				"startDate":    "2023-09-27",
				"endDate":      "2023-12-15",
			},
		},
	},
})

var TextbooksResponder = mustJsonResponder(http.StatusOK, map[string]interface{}{
	"data": []interface{}{
		map[string]interface{}{"id": "9780131103627", "type": "textbook", "attributes": map[string]string{"title": "The C Programming Language"}},
	},
})

var BeaverBusResponder = httpmock.NewStringResponder(http.StatusOK, "all buses on time")

var RouteResponder = mustJsonResponder(http.StatusOK, map[string]interface{}{
	"data": map[string]interface{}{
		"id":   RouteID,
		"type": "route",
		"attributes": map[string]interface{}{
			"description": "North Route",
			"stops": []interface{}{
				map[string]interface{}{"stopID": 101, "description": "Memorial Union"},
			},
		},
	},
})

var ArrivalsResponder = mustJsonResponder(http.StatusOK, map[string]interface{}{
	"data": []interface{}{
		map[string]interface{}{"attributes": map[string]interface{}{
			"arrivals": []interface{}{map[string]string{"vehicleID": VehicleID, "eta": "08:42"}},
		}},
	},
})

var VehicleResponder = mustJsonResponder(http.StatusOK, map[string]interface{}{
	"data": map[string]interface{}{"attributes": map[string]interface{}{"name": "Bus 55", "heading": "N"}},
})
