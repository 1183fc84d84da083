package twogis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "meta": {"code": 200},
  "result": {
    "items": [
      {
        "name": "Хрещатик, 22",
        "purpose_name": "Адміністративна будівля",
        "address": {"components": [{"street": "Хрещатик", "number": "22"}]},
        "adm_div": [{"type": "region", "name": "Київ"}, {"type": "city", "name": "Київ"}],
        "geometry": {"centroid": "POINT(30.523254 50.447852)"}
      },
      {
        "name": "Гараж",
        "address_name": "Хрещатик, 22а",
        "adm_div": [],
        "geometry": {"centroid": "POINT(30.5231 50.4477)"}
      },
      {
        "name": "Трансформаторна підстанція",
        "adm_div": [],
        "geometry": {"centroid": "POINT(30.5232 50.4476)"}
      }
    ]
  }
}`

func testClient(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "30.52,50.45", q.Get("point"))
		assert.Equal(t, "20", q.Get("radius"))
		assert.Equal(t, "building", q.Get("type"))
		assert.Equal(t, "uk_UA", q.Get("locale"))
		assert.Equal(t, "gis-key", q.Get("key"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), "gis-key", "uk_UA")
	c.baseURL = srv.URL
	return c
}

func TestClient_RequestAndNormalize(t *testing.T) {
	c := testClient(t, searchBody)

	raws, err := c.Request(context.Background(), domain.Coordinate{Lon: 30.52, Lat: 50.45})
	require.NoError(t, err)
	require.Len(t, raws, 3)

	first, err := c.Normalize(raws[0])
	require.NoError(t, err)
	assert.Equal(t, domain.Candidate{
		Lon: 30.523254, Lat: 50.447852, City: "Київ", Street: "Хрещатик", HouseNumber: "22",
	}, first.Candidate)
	assert.Equal(t, "Адміністративна будівля", first.Title)
	assert.False(t, first.LowConfidence)

	second, err := c.Normalize(raws[1])
	require.NoError(t, err)
	assert.Equal(t, "Хрещатик, 22а", second.Candidate.Name)
	assert.True(t, second.LowConfidence)

	third, err := c.Normalize(raws[2])
	require.NoError(t, err)
	assert.Equal(t, "Трансформаторна підстанція", third.Label)
}

func TestClient_Request_NotFound(t *testing.T) {
	c := testClient(t, `{"meta": {"code": 404, "error": {"type": "itemNotFound"}}}`)

	raws, err := c.Request(context.Background(), domain.Coordinate{Lon: 30.52, Lat: 50.45})
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestClient_Normalize_BadCentroid(t *testing.T) {
	c := NewClient(http.DefaultClient, "k", "uk_UA")
	it := item{}
	it.Geometry.Centroid = "LINESTRING(1 2, 3 4)"

	_, err := c.Normalize(it)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "centroid")

	_, err = c.Normalize(42)
	require.ErrorIs(t, err, provider.ErrUnexpectedRaw)
}
