package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCandidate_TrimsFields(t *testing.T) {
	c := NewCandidate(30.52, 50.45, " Kyiv ", "\tвулиця Хрещатик ", " 22", "  ")

	assert.Equal(t, "Kyiv", c.City)
	assert.Equal(t, "вулиця Хрещатик", c.Street)
	assert.Equal(t, "22", c.HouseNumber)
	assert.Empty(t, c.Name)
}

func TestCandidate_Label(t *testing.T) {
	assert.Equal(t, "Хрещатик, 22", Candidate{Street: "Хрещатик", HouseNumber: "22"}.Label())
	assert.Equal(t, "Cafe X", Candidate{Name: "Cafe X"}.Label())
	assert.Equal(t, "Хрещатик, 22, Cafe X", Candidate{Street: "Хрещатик", HouseNumber: "22", Name: "Cafe X"}.Label())
	assert.Empty(t, Candidate{City: "Kyiv"}.Label())
}

func TestCandidate_LowConfidence(t *testing.T) {
	assert.False(t, Candidate{Street: "Хрещатик", HouseNumber: "22"}.LowConfidence())
	assert.True(t, Candidate{Street: "Хрещатик"}.LowConfidence())
	assert.True(t, Candidate{Name: "Cafe X"}.LowConfidence())
}

func TestCleanText_FoldsSpaceSeparators(t *testing.T) {
	assert.Equal(t, "Хрещатик 22", CleanText("\u00a0Хрещатик\u00a022\u2007"))
}
