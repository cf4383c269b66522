package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const sampleDirections = `{
  "status": "OK",
  "routes": [{
    "legs": [{
      "steps": [
        {"travel_mode": "WALKING"},
        {"travel_mode": "TRANSIT", "transit_details": {
          "departure_stop": {"name": "Alpha"},
          "arrival_stop": {"name": "Beta"},
          "departure_time": {"text": "6:32 AM", "value": 1746513120},
          "arrival_time": {"text": "7:01 AM", "value": 1746514860},
          "num_stops": 4,
          "line": {
            "short_name": "4817",
            "vehicle": {"type": "HEAVY_RAIL"},
            "agencies": [{"name": "Trenord"}]
          }
        }}
      ]
    }]
  }]
}`

func TestTransitRoutes(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleDirections))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "it", "en", time.Second)
	arrive := time.Unix(1746514860, 0)
	resp, err := c.TransitRoutes(context.Background(), "HomeTown", "EventTown", arrive)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Routes) != 1 || len(resp.Routes[0].Legs[0].Steps) != 2 {
		t.Fatalf("unexpected decode: %+v", resp)
	}
	td := resp.Routes[0].Legs[0].Steps[1].TransitDetails
	if td == nil || td.Line.ShortName != "4817" || td.Line.Vehicle.Type != "HEAVY_RAIL" {
		t.Fatalf("unexpected transit details: %+v", td)
	}
	if gotQuery.Get("mode") != "transit" || gotQuery.Get("arrival_time") != "1746514860" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if gotQuery.Get("region") != "it" || gotQuery.Get("key") != "test-key" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestTransitRoutesZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "", "", time.Second)
	resp, err := c.TransitRoutes(context.Background(), "A", "B", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Routes) != 0 {
		t.Fatalf("expected no routes, got %d", len(resp.Routes))
	}
}

func TestTransitRoutesUpstreamErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"provider rejection", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key"}`))
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": `))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewClient(srv.URL, "k", "", "", time.Second)
			_, err := c.TransitRoutes(context.Background(), "A", "B", time.Now())
			var ue *UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
		})
	}
}
