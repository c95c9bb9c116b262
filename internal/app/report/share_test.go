package report

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playtime/internal/app/calc"
)

func TestShareLink_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  calc.Request
	}{
		{
			name: "full range",
			req:  calc.Request{PlaylistURL: "https://www.youtube.com/playlist?list=PLabc&si=x", StartVideo: 1, PlaybackSpeed: 1},
		},
		{
			name: "bounded range at fractional speed",
			req:  calc.Request{PlaylistURL: "https://youtube.com/watch?v=1&list=PLabc", StartVideo: 3, EndVideo: 17, PlaybackSpeed: 1.75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ShareLink("https://playtime.example.com/?old=1#top", tt.req)
			require.NoError(t, err)

			got, err := ParseShareLink(link)
			require.NoError(t, err)
			assert.Equal(t, tt.req, got)
		})
	}
}

func TestShareLink_Encoding(t *testing.T) {
	link, err := ShareLink("https://playtime.example.com/", calc.Request{
		PlaylistURL:   "https://www.youtube.com/playlist?list=PLabc",
		PlaybackSpeed: 2,
	})
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "https://www.youtube.com/playlist?list=PLabc", q.Get("playlistUrl"))
	assert.Equal(t, "1", q.Get("startVideo"))
	assert.True(t, q.Has("endVideo"))
	assert.Empty(t, q.Get("endVideo"))
	assert.Equal(t, "2", q.Get("playbackSpeed"))
}

func TestParseShareLink(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected calc.Request
		wantErr  bool
	}{
		{
			name:     "defaults for missing start and speed",
			link:     "https://playtime.example.com/?playlistUrl=https%3A%2F%2Fx%2F%3Flist%3DPL1",
			expected: calc.Request{PlaylistURL: "https://x/?list=PL1", StartVideo: 1, PlaybackSpeed: 1},
		},
		{
			name:     "null end from older links",
			link:     "https://playtime.example.com/?playlistUrl=u%3Flist%3DPL1&startVideo=2&endVideo=null&playbackSpeed=1.5",
			expected: calc.Request{PlaylistURL: "u?list=PL1", StartVideo: 2, PlaybackSpeed: 1.5},
		},
		{
			name:    "missing playlist url",
			link:    "https://playtime.example.com/?startVideo=2",
			wantErr: true,
		},
		{
			name:    "non numeric start",
			link:    "https://playtime.example.com/?playlistUrl=u&startVideo=abc",
			wantErr: true,
		},
		{
			name:    "negative end",
			link:    "https://playtime.example.com/?playlistUrl=u&endVideo=-4",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseShareLink(tt.link)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
