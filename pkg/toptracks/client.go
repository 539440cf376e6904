// Package toptracks reads the listener's most played tracks from Spotify.
package toptracks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"nueslify/pkg/config"
	"nueslify/pkg/model"
	"nueslify/pkg/tracker"
)

const providerName = "spotify"

// ErrMissingToken is returned when no access token was supplied.
var ErrMissingToken = errors.New("spotify access token is required")

// Client implements resolver.TopTracksProvider.
type Client struct {
	baseURL   string
	timeRange spotify.Range
	pageSize  int
	maxTracks int
	timeout   time.Duration
	tracker   *tracker.Tracker
	base      http.RoundTripper
}

// New creates a Client. The access token is supplied per call and never stored.
func New(cfg config.SpotifyConfig, timeout time.Duration, t *tracker.Tracker) *Client {
	c := &Client{
		baseURL:   cfg.BaseURL,
		timeRange: spotify.Range(cfg.TimeRange),
		pageSize:  cfg.PageSize,
		maxTracks: cfg.MaxTracks,
		timeout:   timeout,
		tracker:   t,
		base:      http.DefaultTransport,
	}
	if c.timeRange == "" {
		c.timeRange = spotify.MediumTermRange
	}
	if c.pageSize <= 0 || c.pageSize > 50 {
		c.pageSize = 50
	}
	if c.maxTracks <= 0 {
		c.maxTracks = 50
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	return c
}

// TopTracks pages through the listener's top tracks until MaxTracks is reached.
// Spotify errors are returned unchanged.
func (c *Client) TopTracks(ctx context.Context, accessToken string) ([]model.SongRecord, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingToken
	}
	sc := c.client(accessToken)

	page, err := sc.CurrentUsersTopTracks(ctx,
		spotify.Limit(min(c.pageSize, c.maxTracks)),
		spotify.Timerange(c.timeRange))
	if err != nil {
		return nil, err
	}

	var songs []model.SongRecord
	for {
		songs = append(songs, lo.Map(page.Tracks, func(t spotify.FullTrack, _ int) model.SongRecord {
			return toSongRecord(t)
		})...)
		if len(songs) >= c.maxTracks {
			songs = songs[:c.maxTracks]
			break
		}
		err := sc.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("TopTracks: fetched", "count", len(songs), "range", c.timeRange)
	return songs, nil
}

func (c *Client) client(accessToken string) *spotify.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &trackingTransport{base: c.base, tracker: c.tracker},
		},
	}

	var opts []spotify.ClientOption
	if c.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimSuffix(c.baseURL, "/")+"/"))
	}
	return spotify.New(httpClient, opts...)
}

func toSongRecord(t spotify.FullTrack) model.SongRecord {
	return model.SongRecord{
		ID:   t.ID.String(),
		Name: t.Name,
		ArtistNames: lo.Map(t.Artists, func(a spotify.SimpleArtist, _ int) string {
			return a.Name
		}),
	}
}

// trackingTransport counts calls and latency per response.
type trackingTransport struct {
	base    http.RoundTripper
	tracker *tracker.Tracker
}

func (t *trackingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if t.tracker != nil {
		if err != nil || resp.StatusCode >= 400 {
			t.tracker.TrackAPIFailure(providerName)
		} else {
			t.tracker.TrackAPISuccess(providerName, time.Since(start))
		}
	}
	return resp, err
}
