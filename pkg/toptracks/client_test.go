package toptracks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nueslify/pkg/config"
	"nueslify/pkg/tracker"
)

// fakeSpotify serves /me/top/tracks from a fixed catalogue with offset paging.
func fakeSpotify(t *testing.T, total int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"status":401,"message":"Invalid access token"}}`))
			return
		}
		if r.URL.Path != "/me/top/tracks" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "short_term", r.URL.Query().Get("time_range"))

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var items []map[string]any
		for i := offset; i < min(offset+limit, total); i++ {
			items = append(items, map[string]any{
				"id":      fmt.Sprintf("track-%02d", i),
				"name":    fmt.Sprintf("Song %d", i),
				"artists": []map[string]any{{"name": fmt.Sprintf("Artist %d", i)}},
			})
		}
		next := ""
		if offset+limit < total {
			next = fmt.Sprintf("%s/me/top/tracks?limit=%d&offset=%d&time_range=short_term", srv.URL, limit, offset+limit)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"href": r.URL.String(), "items": items, "limit": limit,
			"offset": offset, "total": total, "next": next,
		})
	}))
	return srv
}

func newTestClient(srvURL string, pageSize, maxTracks int, tr *tracker.Tracker) *Client {
	return New(config.SpotifyConfig{
		BaseURL:   srvURL,
		TimeRange: "short_term",
		PageSize:  pageSize,
		MaxTracks: maxTracks,
	}, 5*time.Second, tr)
}

func TestTopTracks_Paginates(t *testing.T) {
	srv := fakeSpotify(t, 7)
	defer srv.Close()

	tr := tracker.New()
	c := newTestClient(srv.URL, 3, 50, tr)

	songs, err := c.TopTracks(context.Background(), "good-token")
	require.NoError(t, err)
	require.Len(t, songs, 7)
	assert.Equal(t, "track-00", songs[0].ID)
	assert.Equal(t, "Song 6", songs[6].Name)
	assert.Equal(t, []string{"Artist 3"}, songs[3].ArtistNames)

	assert.Equal(t, int64(3), tr.Snapshot()["spotify"].APISuccess)
}

func TestTopTracks_CapsAtMax(t *testing.T) {
	srv := fakeSpotify(t, 20)
	defer srv.Close()

	songs, err := newTestClient(srv.URL, 4, 6, nil).TopTracks(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Len(t, songs, 6)
	assert.Equal(t, "track-05", songs[5].ID)
}

func TestTopTracks_Empty(t *testing.T) {
	srv := fakeSpotify(t, 0)
	defer srv.Close()

	songs, err := newTestClient(srv.URL, 10, 10, nil).TopTracks(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Empty(t, songs)
}

func TestTopTracks_AuthError(t *testing.T) {
	srv := fakeSpotify(t, 5)
	defer srv.Close()

	tr := tracker.New()
	_, err := newTestClient(srv.URL, 10, 10, tr).TopTracks(context.Background(), "expired")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid access token")
	assert.Equal(t, int64(1), tr.Snapshot()["spotify"].APIFailures)
}

func TestTopTracks_MissingToken(t *testing.T) {
	c := New(config.SpotifyConfig{}, 0, nil)
	_, err := c.TopTracks(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNew_Defaults(t *testing.T) {
	c := New(config.SpotifyConfig{PageSize: 500}, 0, nil)
	assert.Equal(t, 50, c.pageSize)
	assert.Equal(t, 50, c.maxTracks)
	assert.Equal(t, "medium_term", string(c.timeRange))
	assert.Equal(t, 30*time.Second, c.timeout)
}
