package api

import (
	"iter"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"nueslify/pkg/logging"
)

// maxParamLen drops long values (ids, paths) from the condensed line.
const maxParamLen = 20

type logResponse struct {
	Log    string   `json:"log"`
	Recent []string `json:"recent,omitempty"`
}

// handleLatestLog serves the newest log line, plus ?limit=N earlier ones.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	resp := logResponse{Log: formatLogLine(logging.Tail.Last())}
	if n := queryLimit(r, 0, 50); n > 0 {
		for _, line := range logging.Tail.Recent(n) {
			resp.Recent = append(resp.Recent, formatLogLine(line))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// formatLogLine turns a slog text record into "15:04:05 msg (k=v, ...)".
// Lines that are not slog records come back unchanged.
func formatLogLine(raw string) string {
	var msg, clock string
	var params []string
	for key, val := range logFields(raw) {
		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				clock = t.Format("15:04:05")
			}
		case "level":
		case "msg":
			msg = val
		default:
			if len(val) <= maxParamLen {
				params = append(params, key+"="+val)
			}
		}
	}
	if msg == "" {
		return raw
	}

	slices.Sort(params)
	var sb strings.Builder
	if clock != "" {
		sb.WriteString(clock + " ")
	}
	sb.WriteString(msg)
	if len(params) > 0 {
		sb.WriteString(" (" + strings.Join(params, ", ") + ")")
	}
	return sb.String()
}

// logFields yields the key=value pairs of a slog text line, unquoting values.
func logFields(line string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		rest := strings.TrimSpace(line)
		for rest != "" {
			eq := strings.IndexByte(rest, '=')
			if eq <= 0 {
				return
			}
			key := rest[:eq]
			if strings.ContainsAny(key, " \"") {
				return
			}
			rest = rest[eq+1:]

			var val string
			if strings.HasPrefix(rest, `"`) {
				q, err := strconv.QuotedPrefix(rest)
				if err != nil {
					return
				}
				val, _ = strconv.Unquote(q)
				rest = rest[len(q):]
			} else {
				val, rest, _ = strings.Cut(rest, " ")
			}
			if !yield(key, strings.TrimSpace(val)) {
				return
			}
			rest = strings.TrimLeft(rest, " ")
		}
	}
}
