package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCurrentByQueryPIN(t *testing.T) {
	var gotZip, gotUnits string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotZip = r.URL.Query().Get("zip")
		gotUnits = r.URL.Query().Get("units")
		json.NewEncoder(w).Encode(map[string]any{
			"name": "Nagpur",
			"main": map[string]any{"temp": 31.4, "humidity": 58},
			"weather": []map[string]any{
				{"main": "Clouds", "description": "scattered clouds"},
			},
			"wind": map[string]any{"speed": 4.2},
		})
	})

	client := NewClient("test-key", srv.URL, srv.URL, nil, 0)
	reading, err := client.CurrentByQuery(context.Background(), "440001")
	if err != nil {
		t.Fatalf("CurrentByQuery: %v", err)
	}
	if gotZip != "440001,IN" {
		t.Fatalf("expected zip 440001,IN, got %q", gotZip)
	}
	if gotUnits != "metric" {
		t.Fatalf("expected metric units, got %q", gotUnits)
	}
	if reading.LocationName != "Nagpur" || reading.TemperatureC != 31.4 {
		t.Fatalf("unexpected reading %+v", reading)
	}
	if reading.Condition != "Clouds" || reading.Description != "scattered clouds" {
		t.Fatalf("unexpected condition %+v", reading)
	}
	if reading.HumidityPct != 58 || reading.WindSpeedMS != 4.2 {
		t.Fatalf("unexpected reading %+v", reading)
	}
}

func TestCurrentByQueryGeocodesCityNames(t *testing.T) {
	var geoCalled bool
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/direct":
			geoCalled = true
			if q := r.URL.Query().Get("q"); q != "Pune" {
				t.Fatalf("expected geocode query Pune, got %q", q)
			}
			if limit := r.URL.Query().Get("limit"); limit != "1" {
				t.Fatalf("expected limit 1, got %q", limit)
			}
			json.NewEncoder(w).Encode([]map[string]any{{"lat": 18.52, "lon": 73.86}})
		case "/weather":
			if lat := r.URL.Query().Get("lat"); lat != "18.52" {
				t.Fatalf("expected lat 18.52, got %q", lat)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"name": "Pune",
				"main": map[string]any{"temp": 27.0, "humidity": 70},
				"weather": []map[string]any{
					{"main": "Rain", "description": "light rain"},
				},
				"wind": map[string]any{"speed": 2.1},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	client := NewClient("test-key", srv.URL, srv.URL, nil, 0)
	reading, err := client.CurrentByQuery(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("CurrentByQuery: %v", err)
	}
	if !geoCalled {
		t.Fatal("expected geocoding call for non-PIN query")
	}
	if reading.Condition != "Rain" {
		t.Fatalf("unexpected condition %q", reading.Condition)
	}
}

func TestCurrentByQueryUnknownLocation(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/direct" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	})

	client := NewClient("test-key", srv.URL, srv.URL, nil, 0)
	if _, err := client.CurrentByQuery(context.Background(), "Atlantis"); err != ErrLocationNotFound {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestCurrentByQueryUnknownPIN(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	client := NewClient("test-key", srv.URL, srv.URL, nil, 0)
	if _, err := client.CurrentByQuery(context.Background(), "000000"); err != ErrLocationNotFound {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestCurrentByQueryUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient("test-key", srv.URL, srv.URL, nil, 0)
	if _, err := client.CurrentByQuery(context.Background(), "440001"); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCurrentByQueryBlankLocation(t *testing.T) {
	client := NewClient("test-key", "http://unused", "http://unused", nil, 0)
	if _, err := client.CurrentByQuery(context.Background(), "   "); err != ErrLocationNotFound {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}
