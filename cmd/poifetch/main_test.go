package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/poi-address-fetch/internal/aggregator"
	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/couchcryptid/poi-address-fetch/internal/provider"
)

func TestCoordFlags_Mercator(t *testing.T) {
	want := domain.Coordinate{Lon: 30.52, Lat: 50.45}
	x, y := want.ToMercator()
	f := coordFlags{lon: x, lat: y, frame: "mercator"}

	got, err := f.coordinate()
	require.NoError(t, err)
	assert.InDelta(t, want.Lon, got.Lon, 1e-9)
	assert.InDelta(t, want.Lat, got.Lat, 1e-9)
}

func TestCoordFlags_OutOfRange(t *testing.T) {
	f := coordFlags{lon: 200, lat: 10, frame: "wgs84"}
	_, err := f.coordinate()
	require.Error(t, err)
}

func TestTargetFlags_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"venue-7","name":"Пошта","address":{"city":"Київ"}}`), 0o600))

	f := targetFlags{file: path}
	coord := domain.Coordinate{Lon: 30.52, Lat: 50.45}
	got, err := f.target(coord)
	require.NoError(t, err)
	assert.Equal(t, "venue-7", got.ID)
	assert.Equal(t, "Київ", got.Address.City)
	assert.Equal(t, coord, got.Location)
}

func TestTargetFlags_RequiresID(t *testing.T) {
	f := targetFlags{name: "Пошта"}
	_, err := f.target(domain.Coordinate{})
	require.Error(t, err)
}

func TestPrintSection(t *testing.T) {
	items := []provider.Item{
		provider.NewItem(domain.NewCandidate(30.52, 50.45, "Київ", "вулиця Хрещатик", "22", ""), ""),
		provider.NewItem(domain.NewCandidate(30.52, 50.45, "Київ", "", "", "ЦУМ"), "Універмаг"),
	}
	var buf bytes.Buffer
	printSection(&buf, aggregator.Section{Provider: "OSM", Group: provider.NewGroup("OSM", items)}, false)

	out := buf.String()
	assert.Contains(t, out, "OSM [2]")
	assert.Contains(t, out, "вулиця Хрещатик, 22")
	assert.Contains(t, out, "? ЦУМ")
}

func TestPrintSection_Collapsed(t *testing.T) {
	c := domain.NewCandidate(30.52, 50.45, "Київ", "вулиця Хрещатик", "22", "")
	items := []provider.Item{provider.NewItem(c, ""), provider.NewItem(c, ""), provider.NewItem(c, "")}
	var buf bytes.Buffer
	printSection(&buf, aggregator.Section{Provider: "Here", Group: provider.NewGroup("Here", items)}, false)

	assert.Contains(t, buf.String(), "collapsed")
	assert.NotContains(t, buf.String(), "Хрещатик")
}

func TestListCandidates_NumbersAcrossGroups(t *testing.T) {
	c := domain.NewCandidate(30.52, 50.45, "Київ", "вулиця Хрещатик", "22", "")
	sections := []aggregator.Section{
		{Provider: "OSM", Group: provider.NewGroup("OSM", []provider.Item{provider.NewItem(c, "")})},
		{Provider: "Bing", Group: provider.NewGroup("Bing", nil)},
		{Provider: "Here", Group: provider.NewGroup("Here", []provider.Item{provider.NewItem(c, "")})},
	}
	var buf bytes.Buffer
	listCandidates(&buf, sections)

	assert.Contains(t, buf.String(), " 2. вулиця Хрещатик, 22")
	assert.NotContains(t, buf.String(), "Bing")
}

func TestPrintSection_AllExpandsCollapsed(t *testing.T) {
	c := domain.NewCandidate(30.52, 50.45, "Київ", "вулиця Хрещатик", "22", "")
	items := []provider.Item{provider.NewItem(c, ""), provider.NewItem(c, ""), provider.NewItem(c, "")}
	section := aggregator.Section{Provider: "Here", Group: provider.NewGroup("Here", items)}

	var buf bytes.Buffer
	printSection(&buf, section, true)

	assert.NotContains(t, buf.String(), "collapsed")
	assert.Equal(t, 3, strings.Count(buf.String(), "Хрещатик"))
	assert.True(t, section.Group.Collapsed, "caller's group is left as rendered")
}
