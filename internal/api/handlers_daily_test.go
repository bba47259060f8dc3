package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dailyResponse struct {
	Date            string   `json:"date"`
	CycleNo         *int     `json:"cycle_no"`
	CycleDay        *int     `json:"cycle_day"`
	LiveCycleDay    *int     `json:"live_cycle_day"`
	Energy          *int     `json:"energy"`
	Nausea          *int     `json:"nausea"`
	Fever           bool     `json:"fever"`
	TempC           *float64 `json:"temp_c"`
	StoolCount      *int     `json:"stool_count"`
	StoolBloodCount int      `json:"stool_blood_count"`
	IsToughDay      bool     `json:"is_tough_day"`
	Note            *string  `json:"note"`
}

func TestUpsertDailyRecordMergesPartialUpdates(t *testing.T) {
	ta := newTestApp(t, 2024, time.January, 5)
	token, _ := ta.familyWithCycle("2024-01-01")

	response := ta.request(http.MethodPut, "/api/daily/2024-01-05", token, map[string]any{
		"energy": 2,
		"nausea": 1,
		"fever":  true,
		"temp_c": 38.2,
		"note":   "tired",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)
	var saved dailyResponse
	ta.decode(response, &saved)
	assert.Equal(t, "2024-01-05", saved.Date)
	require.NotNil(t, saved.CycleDay)
	assert.Equal(t, 5, *saved.CycleDay)
	require.NotNil(t, saved.LiveCycleDay)
	assert.Equal(t, 5, *saved.LiveCycleDay)

	response = ta.request(http.MethodPut, "/api/daily/2024-01-05", token, map[string]any{"nausea": 3})
	require.Equal(t, http.StatusOK, response.StatusCode)
	var updated dailyResponse
	ta.decode(response, &updated)
	require.NotNil(t, updated.Energy)
	assert.Equal(t, 2, *updated.Energy)
	require.NotNil(t, updated.Nausea)
	assert.Equal(t, 3, *updated.Nausea)
	assert.False(t, updated.Fever)

	var today dailyResponse
	ta.decode(ta.request(http.MethodGet, "/api/daily/today", token, nil), &today)
	assert.Equal(t, "2024-01-05", today.Date)
}

func TestDailyTodayIsNullWithoutRecord(t *testing.T) {
	ta := newTestApp(t, 2024, time.January, 5)
	token, _ := ta.familyWithCycle("2024-01-01")

	var today *dailyResponse
	ta.decode(ta.request(http.MethodGet, "/api/daily/today", token, nil), &today)
	assert.Nil(t, today)
}

func TestToughDayCopiesPreviousDay(t *testing.T) {
	ta := newTestApp(t, 2024, time.January, 5)
	token, _ := ta.familyWithCycle("2024-01-01")

	response := ta.request(http.MethodPut, "/api/daily/2024-01-04", token, map[string]any{"energy": 1, "nausea": 2})
	require.Equal(t, http.StatusOK, response.StatusCode)
	response.Body.Close()

	response = ta.request(http.MethodPut, "/api/daily/2024-01-05", token, map[string]any{"is_tough_day": true, "nausea": 0})
	require.Equal(t, http.StatusOK, response.StatusCode)
	var tough dailyResponse
	ta.decode(response, &tough)
	require.NotNil(t, tough.Energy)
	assert.Equal(t, 1, *tough.Energy)
	require.NotNil(t, tough.Nausea)
	assert.Equal(t, 0, *tough.Nausea)
}

func TestDailyRangeAndCycleListing(t *testing.T) {
	ta := newTestApp(t, 2024, time.January, 5)
	token, _ := ta.familyWithCycle("2024-01-01")

	for _, date := range []string{"2024-01-02", "2024-01-03", "2024-01-05"} {
		response := ta.request(http.MethodPut, "/api/daily/"+date, token, map[string]any{"energy": 3})
		require.Equal(t, http.StatusOK, response.StatusCode)
		response.Body.Close()
	}

	var ranged []dailyResponse
	ta.decode(ta.request(http.MethodGet, "/api/daily/range?from=2024-01-03&to=2024-01-05", token, nil), &ranged)
	require.Len(t, ranged, 2)
	assert.Equal(t, "2024-01-03", ranged[0].Date)
	assert.Equal(t, "2024-01-05", ranged[1].Date)

	var forCycle []dailyResponse
	ta.decode(ta.request(http.MethodGet, "/api/daily/cycle/1", token, nil), &forCycle)
	assert.Len(t, forCycle, 3)

	response := ta.request(http.MethodGet, "/api/daily/range?from=2024-01-05&to=2024-01-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestDailyValidation(t *testing.T) {
	ta := newTestApp(t, 2024, time.January, 5)
	token, _ := ta.familyWithCycle("2024-01-01")

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{name: "energy above range", path: "/api/daily/2024-01-05", body: map[string]any{"energy": 5}},
		{name: "nausea below range", path: "/api/daily/2024-01-05", body: map[string]any{"nausea": -1}},
		{name: "temperature too low", path: "/api/daily/2024-01-05", body: map[string]any{"temp_c": 34.9}},
		{name: "stool count too high", path: "/api/daily/2024-01-05", body: map[string]any{"stool_count": 31}},
		{name: "bad date", path: "/api/daily/05-01-2024", body: map[string]any{"energy": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := ta.request(http.MethodPut, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, response.StatusCode)
		})
	}
}
