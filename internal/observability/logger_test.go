package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("provider search failed", "provider", "OSM")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "provider search failed", line["msg"])
	assert.Equal(t, "OSM", line["provider"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("cache hit", "key", "OSM:30.52,50.45")

	assert.Contains(t, buf.String(), "msg=\"cache hit\"")
	assert.Contains(t, buf.String(), "key=OSM:30.52,50.45")
}

func TestNewMetricsForTesting_Usable(t *testing.T) {
	m := NewMetricsForTesting()

	m.ProviderRequests.WithLabelValues("OSM", "ok").Inc()
	m.ProviderCache.WithLabelValues("OSM", "hit").Inc()
	m.MergeDecisions.WithLabelValues("name", "apply").Inc()
	m.ProvidersEnabled.Set(6)
}
