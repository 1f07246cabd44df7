package homestayapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL + "/", Timeout: 5 * time.Second})
}

func TestSearchHomestays_Envelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/homestays", r.URL.Path)
		assert.Equal(t, "sunset-villa", r.URL.Query().Get("search"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[{"id":"a1","slug":"sunset-villa"}],"total":1}`))
	})

	results, err := client.SearchHomestays(context.Background(), "sunset-villa", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].ID)
	assert.Equal(t, "sunset-villa", results[0].Slug)
}

func TestSearchHomestays_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"a1","slug":"x"},{"id":"a2","slug":"y"}]`))
	})

	results, err := client.SearchHomestays(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchHomestays_Cancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchHomestays(ctx, "x", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetHomestay(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/homestays/a1", r.URL.Path)
		w.Write([]byte(`{
			"id":"a1","title":"Sunset Villa","slug":"sunset-villa",
			"galleryUrls":[{"url":"https://img/1.jpg"},"https://img/2.jpg"],
			"tags":"beach, family",
			"rooms":[{"id":"r1","name":"Garden Suite","imageUrls":{"1":"b.jpg","0":"a.jpg"}}],
			"availability":[{"date":"2025-01-01","status":"BLOCKED","source":"manual","notes":"Maintenance"}]
		}`))
	})

	h, err := client.GetHomestay(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Sunset Villa", h.Title)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, h.GalleryURLs.Strings())
	assert.Equal(t, []string{"beach", "family"}, h.Tags.Strings())
	require.Len(t, h.Rooms, 1)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, h.Rooms[0].ImageURLs.Strings())
	require.Len(t, h.Availability, 1)
	assert.Equal(t, "Maintenance", h.Availability[0].Notes)
}

func TestCreateHomestay(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Sunset Villa", body["title"])
		assert.NotContains(t, body, "summary")

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"new-id","title":"Sunset Villa","slug":"sunset-villa"}`))
	})

	h, err := client.CreateHomestay(context.Background(), Payload{Title: "Sunset Villa", Slug: "sunset-villa", Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", h.ID)
}

func TestUpdateHomestay_DataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/homestays/a1", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"a1","slug":"s"}}`))
	})

	h, err := client.UpdateHomestay(context.Background(), "a1", Payload{Title: "T", Slug: "s"})
	require.NoError(t, err)
	assert.Equal(t, "a1", h.ID)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
		code     string
	}{
		{"Message preferred", http.StatusConflict, `{"error":"slug_taken","message":"Slug already in use"}`, "Slug already in use", "slug_taken"},
		{"Error only", http.StatusBadRequest, `{"error":"Title is required"}`, "Title is required", "Title is required"},
		{"No body", http.StatusInternalServerError, ``, "request failed with status 500", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.CreateHomestay(context.Background(), Payload{Title: "T", Slug: "t"})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.code, apiErr.Code)
			assert.Equal(t, tc.expected, apiErr.Error())
		})
	}
}

func TestClient_UserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "homestay-editor/test", r.UserAgent())
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, UserAgent: "homestay-editor/test"})
	_, err := client.SearchHomestays(context.Background(), "", 0)
	require.NoError(t, err)
}
