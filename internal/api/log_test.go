package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nueslify/pkg/logging"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "sorted params, long values dropped",
			in:   `time=2026-10-18T06:50:46.074+02:00 level=INFO msg="Mix complete" to=news from=music transition_id=3f0c2a9e-8f65-4a43-b1c2-7d4e5f6a7b8c tracks="3 "`,
			want: "06:50:46 Mix complete (from=music, to=news, tracks=3)",
		},
		{
			name: "no msg returns raw",
			in:   `level=INFO foo=bar`,
			want: `level=INFO foo=bar`,
		},
		{
			name: "escaped quotes",
			in:   `time=2026-10-18T07:00:00Z level=WARN msg="Mix failed" error="say \"hi\""`,
			want: `07:00:00 Mix failed (error=say "hi")`,
		},
		{
			name: "plain text",
			in:   "starting",
			want: "starting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatLogLine(tt.in))
		})
	}
}

func TestHandleLatestLog(t *testing.T) {
	_, err := logging.Tail.Write([]byte(`time=2026-10-18T09:59:58Z level=INFO msg="Inbox: Watching for news"` + "\n"))
	require.NoError(t, err)
	_, err = logging.Tail.Write([]byte(`time=2026-10-18T10:00:00Z level=INFO msg="Server listening" addr=:8080` + "\n"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handleLatestLog(rec, httptest.NewRequest(http.MethodGet, "/api/log/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body logResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "10:00:00 Server listening (addr=:8080)", body.Log)
	assert.Empty(t, body.Recent)

	rec = httptest.NewRecorder()
	handleLatestLog(rec, httptest.NewRequest(http.MethodGet, "/api/log/latest?limit=2", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"09:59:58 Inbox: Watching for news", "10:00:00 Server listening (addr=:8080)"}, body.Recent)
}
