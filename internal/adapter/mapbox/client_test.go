package mapbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var kyiv = domain.Coordinate{Lon: 30.52, Lat: 50.45}

func testClient(baseURL string) *Client {
	c := NewClient(http.DefaultClient, testToken, "uk")
	c.baseURL = baseURL
	return c
}

func TestClient_ReverseAddress_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/30.52,50.45.json", r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		assert.Equal(t, "address", r.URL.Query().Get("types"))
		assert.Equal(t, "uk", r.URL.Query().Get("language"))

		resp := response{
			Features: []feature{
				{
					ID:        "address.123",
					Center:    []float64{30.5232, 50.4478},
					PlaceName: "вулиця Хрещатик 22, Київ, Україна",
					Text:      "вулиця Хрещатик",
					Address:   "22",
					Relevance: 1,
					Context: []contextEntry{
						{ID: "postcode.1", Text: "01001"},
						{ID: "place.2", Text: "Київ"},
						{ID: "country.3", Text: "Україна"},
					},
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	raws, err := c.Request(context.Background(), kyiv)
	require.NoError(t, err)
	require.Len(t, raws, 1)

	item, err := c.Normalize(raws[0])
	require.NoError(t, err)
	assert.Equal(t, domain.Candidate{
		Lon: 30.5232, Lat: 50.4478, City: "Київ", Street: "вулиця Хрещатик", HouseNumber: "22",
	}, item.Candidate)
	assert.Equal(t, "вулиця Хрещатик 22, Київ, Україна", item.Title)
}

func TestClient_ReverseAddress_NoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	raws, err := testClient(srv.URL).Request(context.Background(), kyiv)
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Request(context.Background(), kyiv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Request(context.Background(), kyiv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Normalize_Errors(t *testing.T) {
	c := testClient("http://unused")

	_, err := c.Normalize(feature{ID: "address.1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no center")

	_, err = c.Normalize("raw")
	require.ErrorIs(t, err, provider.ErrUnexpectedRaw)
}

func TestClient_Normalize_WithoutPlaceContext(t *testing.T) {
	item, err := testClient("http://unused").Normalize(feature{
		Center: []float64{30.5, 50.4},
		Text:   "Хрещатик",
	})
	require.NoError(t, err)
	assert.Empty(t, item.Candidate.City)
	assert.True(t, item.LowConfidence)
}
