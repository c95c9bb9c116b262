package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected int64
	}{
		{name: "all components", token: "PT1H2M3S", expected: 3723},
		{name: "minutes only", token: "PT45M", expected: 2700},
		{name: "seconds only", token: "PT30S", expected: 30},
		{name: "hours only", token: "PT2H", expected: 7200},
		{name: "hours and seconds", token: "PT1H5S", expected: 3605},
		{name: "prefix only", token: "PT", expected: 0},
		{name: "empty", token: "", expected: 0},
		{name: "malformed", token: "not-a-duration", expected: 0},
		{name: "day component is not understood", token: "P1D", expected: 0},
		{name: "overflow", token: "PT99999999999999999999H", expected: 0},
		{name: "large but valid", token: "PT100H", expected: 360000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.token))
		})
	}
}

func TestParse_NeverNegative(t *testing.T) {
	for _, token := range []string{"PT-1S", "PT-5M", "-PT5M", "PT9223372036854775807S"} {
		assert.GreaterOrEqual(t, Parse(token), int64(0), token)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{name: "zero", seconds: 0, expected: "0h 0m 0s"},
		{name: "mixed", seconds: 3723, expected: "1h 2m 3s"},
		{name: "six minutes", seconds: 360, expected: "0h 6m 0s"},
		{name: "three minutes", seconds: 180, expected: "0h 3m 0s"},
		{name: "fractional seconds", seconds: 1861.5, expected: "0h 31m 1.5s"},
		{name: "more than a day", seconds: 90061, expected: "25h 1m 1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.seconds))
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	assert.Equal(t, "1h 2m 3s", Format(float64(Parse("PT1H2M3S"))))
}
