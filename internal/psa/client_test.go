package psa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ddaumiller/psa-update/internal/utils"
)

func newCatalogServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(utils.NewUpdateHTTPClient(utils.HTTPClientConfig{}))
	client.APIURL = srv.URL
	return client
}

func TestRequestAvailableUpdates(t *testing.T) {
	var requested updateRequest
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&requested); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(UpdateResponse{
			RequestResult: "OK",
			VIN:           "VF3TESTVIN0000000",
			Software: []Software{{
				Type: SoftwareTypeNAC,
				Updates: []SoftwareUpdate{{
					UpdateID:      "123",
					UpdateVersion: "21.08.87.32",
					UpdateSize:    "3400000000",
					UpdateURL:     "https://cdn/update.tar",
				}},
			}},
		})
	})

	response, err := client.RequestAvailableUpdates(context.Background(), "VF3TESTVIN0000000", "eur")
	if err != nil {
		t.Fatal(err)
	}
	if requested.VIN != "VF3TESTVIN0000000" {
		t.Errorf("request VIN = %q", requested.VIN)
	}
	if len(requested.SoftwareTypes) != 3 {
		t.Fatalf("expected firmware types plus map type, got %+v", requested.SoftwareTypes)
	}
	if requested.SoftwareTypes[2].SoftwareType != "map-eur" {
		t.Errorf("expected map-eur, got %q", requested.SoftwareTypes[2].SoftwareType)
	}
	if len(response.Software) != 1 || len(response.Software[0].Updates) != 1 {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Software[0].Updates[0].UpdateURL != "https://cdn/update.tar" {
		t.Errorf("unexpected update URL: %q", response.Software[0].Updates[0].UpdateURL)
	}
}

func TestRequestAvailableUpdatesNoMap(t *testing.T) {
	var requested updateRequest
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&requested)
		json.NewEncoder(w).Encode(UpdateResponse{RequestResult: "OK"})
	})
	if _, err := client.RequestAvailableUpdates(context.Background(), "VIN", ""); err != nil {
		t.Fatal(err)
	}
	if len(requested.SoftwareTypes) != 2 {
		t.Errorf("expected only firmware types, got %+v", requested.SoftwareTypes)
	}
}

func TestRequestAvailableUpdatesUnsupportedMap(t *testing.T) {
	client := NewClient(utils.NewUpdateHTTPClient(utils.HTTPClientConfig{}))
	if _, err := client.RequestAvailableUpdates(context.Background(), "VIN", "atlantis"); err == nil {
		t.Fatal("expected error for unsupported map code")
	}
}

func TestRequestAvailableUpdatesFailedResult(t *testing.T) {
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(UpdateResponse{RequestResult: "KO"})
	})
	if _, err := client.RequestAvailableUpdates(context.Background(), "VIN", ""); err == nil {
		t.Fatal("expected error for KO request result")
	}
}

func TestRequestAvailableUpdatesServerError(t *testing.T) {
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if _, err := client.RequestAvailableUpdates(context.Background(), "VIN", ""); err == nil {
		t.Fatal("expected error for server failure")
	}
}

func TestEmptyUpdateFiltered(t *testing.T) {
	update := SoftwareUpdate{}
	if !update.Empty() {
		t.Error("update without an ID should be empty")
	}
	update.UpdateID = "123"
	if update.Empty() {
		t.Error("update with an ID should not be empty")
	}
}
