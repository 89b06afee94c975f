package fiscal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2025, false},
		{1900, false},
		{2000, true},
		{2100, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLeapYear(tt.year), "year %d", tt.year)
	}
}

func TestForYear(t *testing.T) {
	w := ForYear(2024)
	assert.Equal(t, "2024-04-01", w.Start.String())
	assert.Equal(t, "2025-03-31", w.End.String())
	assert.Equal(t, "FY2024-25", w.Label())
	assert.Equal(t, 365, w.DaysInYear())

	// FY2023-24 ends in 2024 and contains 29 Feb 2024.
	assert.Equal(t, 366, ForYear(2023).DaysInYear())
}

func TestParseYear(t *testing.T) {
	for _, in := range []string{"2024", "2024-25", "2024-2025", "FY2024-25", " fy2024-25 "} {
		w, err := ParseYear(in)
		require.NoError(t, err, in)
		assert.Equal(t, ForYear(2024), w, in)
	}

	for _, in := range []string{"", "abc", "2024-27", "FY24"} {
		_, err := ParseYear(in)
		assert.Error(t, err, in)
	}
}

func TestDaysUsed(t *testing.T) {
	w := ForYear(2024)

	tests := []struct {
		name  string
		start *Date
		end   *Date
		want  int
	}{
		{"full year", nil, nil, 365},
		{"purchase before window", MustDate("2019-06-15").Ptr(), nil, 365},
		{"purchase mid year", MustDate("2024-10-01").Ptr(), nil, 182},
		{"purchase on last day", MustDate("2025-03-31").Ptr(), nil, 1},
		{"purchase after window", MustDate("2025-04-10").Ptr(), nil, 0},
		{"disposal mid year", nil, MustDate("2024-04-30").Ptr(), 30},
		{"disposal outside window ignored", nil, MustDate("2026-01-01").Ptr(), 365},
		{"disposal before window ignored", nil, MustDate("2023-01-01").Ptr(), 365},
		{"purchase and disposal", MustDate("2024-05-01").Ptr(), MustDate("2024-05-31").Ptr(), 31},
		{"disposal before purchase", MustDate("2024-09-01").Ptr(), MustDate("2024-08-01").Ptr(), 0},
		{"zero dates ignored", &Date{}, &Date{}, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysUsed(tt.start, tt.end, w)
			assert.Equal(t, tt.want, got.Used)
			assert.Equal(t, 365, got.InYear)
		})
	}
}

func TestDaysUsed_LeapYear(t *testing.T) {
	w := ForYear(2023)
	got := DaysUsed(nil, nil, w)
	assert.Equal(t, Days{Used: 366, InYear: 366}, got)
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		A Date  `json:"a"`
		B *Date `json:"b"`
		C *Date `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-04-01","b":null,"c":"2025-03-31T10:00:00Z"}`), &v))
	assert.Equal(t, NewDate(2024, time.April, 1), v.A)
	assert.Nil(t, v.B)
	require.NotNil(t, v.C)
	assert.Equal(t, "2025-03-31", v.C.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-04-01","b":null,"c":"2025-03-31"}`, string(out))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-07-15"))
	assert.Equal(t, "2024-07-15", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
