// Package video provides the per-item duration resolution entity.
package video

// Resolution is the outcome of looking up one video's duration.
// A degraded resolution always carries zero seconds; Reason says why.
type Resolution struct {
	VideoID  string // Catalog video ID
	Seconds  int64  // Duration in seconds (never negative)
	Degraded bool   // Lookup failed or the video is unavailable
	Reason   string // Human-readable cause when Degraded
}

// Resolved returns a successful resolution.
func Resolved(videoID string, seconds int64) Resolution {
	if seconds < 0 {
		seconds = 0
	}
	return Resolution{VideoID: videoID, Seconds: seconds}
}

// Degrade returns a zero-duration resolution marked as degraded.
func Degrade(videoID, reason string) Resolution {
	return Resolution{VideoID: videoID, Degraded: true, Reason: reason}
}
