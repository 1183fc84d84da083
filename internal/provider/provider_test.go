package provider

import (
	"testing"

	"github.com/couchcryptid/poi-address-fetch/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCacheKey_StableForEqualInputs(t *testing.T) {
	a := CacheKey("OSM", domain.Coordinate{Lon: 30.52, Lat: 50.45})
	b := CacheKey("OSM", domain.Coordinate{Lon: 30.52, Lat: 50.45})

	assert.Equal(t, a, b)
	assert.Equal(t, "OSM:30.52,50.45", a)
	assert.NotEqual(t, a, CacheKey("Bing", domain.Coordinate{Lon: 30.52, Lat: 50.45}))
	assert.NotEqual(t, a, CacheKey("OSM", domain.Coordinate{Lon: 50.45, Lat: 30.52}))
}

func TestNewItem_AppendsExtraLabelText(t *testing.T) {
	c := domain.NewCandidate(30.52, 50.45, "", "", "", "Кафе")
	item := NewItem(c, " Ресторан ", "вулиця Хрещатик, 22", "  ")

	assert.Equal(t, "Кафе, вулиця Хрещатик, 22", item.Label)
	assert.Equal(t, "Ресторан", item.Title)
	assert.True(t, item.LowConfidence)
}

func TestNewItem_ExtraOnlyLabel(t *testing.T) {
	item := NewItem(domain.Candidate{}, "", "Площа Свободи")
	assert.Equal(t, "Площа Свободи", item.Label)
}

func TestNewGroup_CollapsesAboveTwoItems(t *testing.T) {
	items := func(n int) []Item { return make([]Item, n) }

	assert.False(t, NewGroup("OSM", items(0)).Collapsed)
	assert.False(t, NewGroup("OSM", items(2)).Collapsed)
	g := NewGroup("OSM", items(3))
	assert.True(t, g.Collapsed)
	assert.Equal(t, "OSM [3]", g.Legend())

	g.Toggle()
	assert.False(t, g.Collapsed)
}

func TestNewGroup_NilItemsRenderEmpty(t *testing.T) {
	g := NewGroup("Here", nil)
	assert.True(t, g.Empty())
	assert.NotNil(t, g.Items)
	assert.Equal(t, "Here [0]", g.Legend())
}

func TestGroup_LegendMultiDigitCount(t *testing.T) {
	g := NewGroup("2Gis", make([]Item, 12))
	assert.Equal(t, "2Gis [12]", g.Legend())
}
