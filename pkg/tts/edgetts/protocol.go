package edgetts

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frames of the read-aloud websocket. Text frames are HTTP-like: header
// lines, a blank line, then the body. Binary frames carry a big-endian
// uint16 header length, the header, then audio.

const (
	outputFormat = "audio-24khz-48kbitrate-mono-mp3"
	// seconds between 1601-01-01 (Windows epoch) and 1970-01-01
	windowsEpochOffset = 11644473600
)

var turnEnd = []byte("Path:turn.end")

func configFrame() []byte {
	return []byte("Content-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"` + outputFormat + `"}}}}`)
}

func ssmlFrame(requestID, voice, text string) []byte {
	return fmt.Appendf(nil, "X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nPath:ssml\r\n\r\n%s",
		requestID, buildSSML(voice, text))
}

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// buildSSML takes the language from the voice name prefix ("de-DE-...").
func buildSSML(voice, text string) string {
	lang := "en-US"
	if len(voice) >= 5 {
		lang = voice[:5]
	}
	return "<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='" + lang + "'>" +
		"<voice name='" + voice + "'>" + ssmlEscaper.Replace(text) + "</voice></speak>"
}

// audioPayload returns the audio part of a binary frame, nil for malformed frames.
func audioPayload(frame []byte) []byte {
	if len(frame) < 2 {
		return nil
	}
	start := 2 + int(binary.BigEndian.Uint16(frame))
	if start > len(frame) {
		return nil
	}
	return frame[start:]
}

func isTurnEnd(frame []byte) bool {
	return bytes.Contains(frame, turnEnd)
}

// gecToken computes Sec-MS-GEC: the current time in Windows file-time ticks,
// floored to five minutes, followed by the client token, SHA-256, upper hex.
func gecToken(clientToken string, now time.Time) string {
	secs := now.Unix() + windowsEpochOffset
	secs -= secs % 300
	sum := sha256.Sum256(fmt.Appendf(nil, "%d0000000%s", secs, clientToken))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// newID returns a dash-less uuid as used for request ids and the muid cookie.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
