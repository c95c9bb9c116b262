package connect

// CalculateRequest asks for the duration of a playlist range.
type CalculateRequest struct {
	PlaylistURL   string  `json:"playlist_url"`
	StartVideo    int     `json:"start_video,omitempty"`
	EndVideo      int     `json:"end_video,omitempty"`
	PlaybackSpeed float64 `json:"playback_speed"`
}

// CalculateResponse carries the calculation outcome in display form.
type CalculateResponse struct {
	PlaylistID   string `json:"playlist_id"`
	Title        string `json:"title"`
	Creator      string `json:"creator"`
	ItemCount    int64  `json:"item_count"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Dates        string `json:"dates"`

	TotalSeconds       int64   `json:"total_seconds"`
	AdjustedSeconds    float64 `json:"adjusted_seconds"`
	TotalDuration      string  `json:"total_duration"`
	AverageDuration    string  `json:"average_duration"`
	EstimatedWatchTime string  `json:"estimated_watch_time"`
	DailyWatchTime     string  `json:"daily_watch_time"`
	WeeklyWatchTime    string  `json:"weekly_watch_time"`
	MonthlyWatchTime   string  `json:"monthly_watch_time"`

	ShareLink     string `json:"share_link"`
	Partial       bool   `json:"partial"`
	PartialReason string `json:"partial_reason,omitempty"`
	DegradedCount int    `json:"degraded_count"`
}

// ExportReportRequest asks for a calculation rendered as a document.
type ExportReportRequest struct {
	Request CalculateRequest `json:"request"`
	Format  string           `json:"format"`
}

// ExportReportResponse is a rendered report document.
type ExportReportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}
