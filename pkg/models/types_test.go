package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateAddDays(t *testing.T) {
	testCases := []struct {
		start    Date
		expected string
	}{
		{NewDate(2025, time.March, 1), "2025-03-29"},
		{NewDate(2025, time.February, 10), "2025-03-10"},
		{NewDate(2024, time.February, 10), "2024-03-09"},
		{NewDate(2025, time.December, 20), "2026-01-17"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.start.AddDays(28).String(), tc.start.String())
	}
}

func TestDateJSON(t *testing.T) {
	var req ForecastRequest
	require.NoError(t, json.Unmarshal([]byte(`{"village_id":"V1","start_date":"2025-03-01T18:30:00.000Z","migration_adjustment":-3}`), &req))
	assert.Equal(t, "2025-03-01", req.StartDate.String())
	assert.Equal(t, -3.0, req.MigrationAdjustment)

	b, err := json.Marshal(Forecast{PeriodStart: NewDate(2025, time.March, 1)})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"period_start":"2025-03-01"`)
	assert.NotContains(t, string(b), `"notes"`)

	assert.Error(t, json.Unmarshal([]byte(`{"start_date":"01/03/2025"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"start_date":20250301}`), &req))
}

func TestDateOf(t *testing.T) {
	ist := time.FixedZone("IST", 19800)
	d := DateOf(time.Date(2025, time.March, 1, 23, 30, 0, 0, ist))
	assert.Equal(t, "2025-03-01", d.String())
	assert.Equal(t, time.UTC, d.Location())
}
