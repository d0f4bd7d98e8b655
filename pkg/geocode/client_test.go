package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "jsonv2" || q.Get("lat") != "51.5" || q.Get("lon") != "-0.12" {
			t.Errorf("unexpected query %v", q)
		}
		if r.Header.Get("User-Agent") != "carbonova-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`{"display_name":"Trafalgar Square, London"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "carbonova-test", time.Second, false)
	addr, err := c.ReverseGeocode(context.Background(), 51.5, -0.12)
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if addr != "Trafalgar Square, London" {
		t.Errorf("addr = %q", addr)
	}
}

func TestReverseGeocodeNoAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, false)
	if _, err := c.ReverseGeocode(context.Background(), 0, 0); !errors.Is(err, ErrNoAddress) {
		t.Errorf("got %v, want ErrNoAddress", err)
	}
}

func TestReverseGeocodeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, false)
	if _, err := c.ReverseGeocode(context.Background(), 1, 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestReverseGeocodeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 20*time.Millisecond, false)
	if _, err := c.ReverseGeocode(context.Background(), 1, 2); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestMockReverseGeocode(t *testing.T) {
	c := NewClient("http://unused", "", time.Second, true)
	addr, err := c.ReverseGeocode(context.Background(), 1.23456, 7.5)
	if err != nil || addr != "Near 1.2346, 7.5000" {
		t.Errorf("got %q, %v", addr, err)
	}
}
