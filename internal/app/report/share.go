package report

import (
	"net/url"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/playtime/internal/app/calc"
)

var validate = validator.New()

// ShareLink encodes req as query parameters of base.
// An unbounded end is encoded as an empty value.
func ShareLink(base string, req calc.Request) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid share base url %q", base)
	}

	end := ""
	if req.EndVideo > 0 {
		end = strconv.Itoa(req.EndVideo)
	}

	params := url.Values{}
	params.Set("playlistUrl", req.PlaylistURL)
	params.Set("startVideo", strconv.Itoa(max(req.StartVideo, 1)))
	params.Set("endVideo", end)
	params.Set("playbackSpeed", strconv.FormatFloat(req.PlaybackSpeed, 'f', -1, 64))

	u.RawQuery = params.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// ParseShareLink decodes a share link back into a request.
// Missing start and speed fall back to 1.
func ParseShareLink(link string) (calc.Request, error) {
	u, err := url.Parse(link)
	if err != nil {
		return calc.Request{}, errors.Wrap(err, "invalid share link")
	}

	raw := make(map[string]any)
	for key, values := range u.Query() {
		// older links carry "null" for an unbounded end
		if len(values) > 0 && values[0] != "null" {
			raw[key] = values[0]
		}
	}

	var req calc.Request
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return calc.Request{}, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return calc.Request{}, errors.Wrap(err, "failed to decode share link")
	}

	if err := defaults.Set(&req); err != nil {
		return calc.Request{}, errors.Wrap(err, "failed to set defaults")
	}

	if err := validate.Struct(req); err != nil {
		return calc.Request{}, errors.Wrap(err, "invalid share link")
	}

	return req, nil
}
