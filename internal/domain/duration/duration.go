// Package duration converts catalog duration tokens to seconds and back.
package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// tokenPattern matches the hour, minute and second components of a token
// such as "PT1H2M3S". Each component is optional.
var tokenPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// Parse converts a duration token into whole seconds.
// Tokens that do not match, or whose components overflow, yield 0.
func Parse(token string) int64 {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0
	}

	var total int64
	for i, unit := range []int64{3600, 60, 1} {
		part := m[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n > (math.MaxInt64-total)/unit {
			return 0
		}
		total += n * unit
	}
	return total
}

// Format renders seconds as "{h}h {m}m {s}s".
// Hours and minutes are whole; the seconds remainder keeps its fraction.
func Format(seconds float64) string {
	hours := math.Floor(seconds / 3600)
	minutes := math.Floor(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)
	return fmt.Sprintf("%sh %sm %ss",
		strconv.FormatFloat(hours, 'f', -1, 64),
		strconv.FormatFloat(minutes, 'f', -1, 64),
		strconv.FormatFloat(secs, 'f', -1, 64),
	)
}
