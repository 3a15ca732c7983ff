package googlebooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"libris/internal/books"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, apiKey, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestSearchMapsVolumes(t *testing.T) {
	client := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("path = %s", r.URL.Path)
		}
		query := r.URL.Query()
		if got := query.Get("q"); got != "dune" {
			t.Errorf("q = %q", got)
		}
		if got := query.Get("key"); got != "secret" {
			t.Errorf("key = %q", got)
		}
		json.NewEncoder(w).Encode(searchResponse{
			TotalItems: 1,
			Items: []volume{{
				ID: "B1a2c3",
				VolumeInfo: volumeInfo{
					Title:         "Dune",
					Authors:       []string{"Frank Herbert"},
					Description:   "Set on the desert planet Arrakis.",
					Publisher:     "Chilton Books",
					PublishedDate: "1965",
					PageCount:     412,
					Language:      "en",
					IndustryIdentifiers: []industryIdentifier{
						{Type: "ISBN_10", Identifier: "0441013597"},
						{Type: "ISBN_13", Identifier: "9780441013593"},
					},
					ImageLinks:  imageLinks{Thumbnail: "https://example.org/dune.jpg"},
					PreviewLink: "https://example.org/preview",
				},
			}},
		})
	})

	found, err := client.Search(context.Background(), "dune", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d books", len(found))
	}
	book := found[0]
	if book.ID != books.CompositeID(books.SourceGoogleBooks, "B1a2c3") {
		t.Errorf("ID = %q", book.ID)
	}
	if book.ISBN != "9780441013593" {
		t.Errorf("ISBN = %q, want the ISBN-13", book.ISBN)
	}
	if book.PageCount != 412 {
		t.Errorf("page count = %d", book.PageCount)
	}
}

func TestSearchOmitsMissingAPIKey(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("key") {
			t.Error("key param should be omitted without an API key")
		}
		json.NewEncoder(w).Encode(searchResponse{})
	})
	if _, err := client.Search(context.Background(), "dune", 5); err != nil {
		t.Fatal(err)
	}
}

func TestSearchCapsMaxResults(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxResults"); got != "40" {
			t.Errorf("maxResults = %q, want API maximum 40", got)
		}
		json.NewEncoder(w).Encode(searchResponse{})
	})
	if _, err := client.Search(context.Background(), "dune", 100); err != nil {
		t.Fatal(err)
	}
}

func TestSearchSurfacesUpstreamStatus(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})
	if _, err := client.Search(context.Background(), "dune", 5); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestPickISBNFallsBackToISBN10(t *testing.T) {
	got := pickISBN([]industryIdentifier{
		{Type: "OTHER", Identifier: "x"},
		{Type: "ISBN_10", Identifier: "0441013597"},
	})
	if got != "0441013597" {
		t.Errorf("pickISBN = %q", got)
	}
}

func TestGetByIDFetchesVolume(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes/zyTCAlFPjgYC" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(volume{
			ID: "zyTCAlFPjgYC",
			VolumeInfo: volumeInfo{
				Title:       "The Google Story",
				Authors:     []string{"David A. Vise"},
				Description: "The definitive account of the search company.",
			},
		})
	})

	book, err := client.GetByID(context.Background(), "zyTCAlFPjgYC")
	if err != nil {
		t.Fatal(err)
	}
	if book.ID != books.CompositeID(books.SourceGoogleBooks, "zyTCAlFPjgYC") {
		t.Errorf("ID = %q", book.ID)
	}
	if book.Description != "The definitive account of the search company." {
		t.Errorf("description = %q", book.Description)
	}
}

func TestGetByIDMissingVolume(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if _, err := client.GetByID(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown volume")
	}
}
