// Package calc runs one playlist duration calculation from user input to
// derived statistics.
package calc

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/playtime/internal/domain/playlist"
)

// Request is the user input of one calculation.
// StartVideo 0 means the first item and EndVideo 0 means no upper bound.
type Request struct {
	PlaylistURL   string  `json:"playlist_url" mapstructure:"playlistUrl" validate:"required"`
	StartVideo    int     `json:"start_video" mapstructure:"startVideo" default:"1" validate:"gte=0"`
	EndVideo      int     `json:"end_video" mapstructure:"endVideo" validate:"gte=0"`
	PlaybackSpeed float64 `json:"playback_speed" mapstructure:"playbackSpeed" default:"1" validate:"gt=0"`
}

var validate = validator.New()

// parsed is a validated request.
type parsed struct {
	id    playlist.ID
	rng   playlist.Range
	speed float64
}

// parse validates req against the accepted speed bounds.
// Every failure is marked ErrInvalidInput.
func (req Request) parse(minSpeed, maxSpeed float64) (parsed, error) {
	if err := validate.Struct(req); err != nil {
		return parsed{}, errors.Mark(errors.Wrap(err, "request validation failed"), ErrInvalidInput)
	}

	id, ok := playlist.ExtractID(req.PlaylistURL)
	if !ok {
		return parsed{}, errors.Mark(errors.Newf("no playlist id in %q", req.PlaylistURL), ErrInvalidInput)
	}

	rng, err := playlist.NewRange(req.StartVideo, req.EndVideo)
	if err != nil {
		return parsed{}, errors.Mark(err, ErrInvalidInput)
	}

	if req.PlaybackSpeed < minSpeed || req.PlaybackSpeed > maxSpeed {
		return parsed{}, errors.Mark(
			errors.Newf("playback speed %g is outside [%g, %g]", req.PlaybackSpeed, minSpeed, maxSpeed),
			ErrInvalidInput)
	}

	return parsed{id: id, rng: rng, speed: req.PlaybackSpeed}, nil
}
