package youtube

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

// APIError represents an error response from the YouTube Data API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Reason     string
}

// errorResponse is the error envelope returned by the API.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
			Domain string `json:"domain"`
		} `json:"errors"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube API error %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube API error %d: %s", e.StatusCode, e.Message)
}

// newAPIError decodes an error body. Unknown playlists are marked ErrPlaylistNotFound.
func newAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != 0 {
		apiErr.Code = envelope.Error.Code
		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
		if len(envelope.Error.Errors) > 0 {
			apiErr.Reason = envelope.Error.Errors[0].Reason
		}
	}

	if status == http.StatusNotFound || apiErr.Reason == "playlistNotFound" {
		return errors.Mark(apiErr, ErrPlaylistNotFound)
	}
	return apiErr
}
