package llm

import (
	"math/rand/v2"
	"strings"
)

// WordWrap breaks each line of text at word boundaries so no line exceeds
// width, except single words that are longer on their own.
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var sb strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		col := 0
		for _, word := range strings.Fields(line) {
			switch {
			case col == 0:
			case col+1+len(word) > width:
				sb.WriteByte('\n')
				col = 0
			default:
				sb.WriteByte(' ')
				col++
			}
			sb.WriteString(word)
			col += len(word)
		}
	}
	return sb.String()
}

// TruncateLines cuts lines longer than maxLen runes and marks the cut with "...".
func TruncateLines(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if r := []rune(line); len(r) > maxLen {
			lines[i] = string(r[:maxLen]) + "..."
		}
	}
	return strings.Join(lines, "\n")
}

var (
	markdownReplacer = strings.NewReplacer("**", "", "__", "", "```", "", "#", "")
	quotePairs       = [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}}
)

// CleanSpoken prepares model output for TTS: markdown markers go, and so
// do quotes wrapped around the whole text.
func CleanSpoken(text string) string {
	text = strings.TrimSpace(markdownReplacer.Replace(text))
	for _, q := range quotePairs {
		if len(text) >= len(q[0])+len(q[1]) && strings.HasPrefix(text, q[0]) && strings.HasSuffix(text, q[1]) {
			text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, q[0]), q[1]))
		}
	}
	return text
}

// minTemperature keeps sampled temperatures away from greedy decoding.
const minTemperature = 0.1

// SampleTemperature draws around base with a standard deviation of jitter/2,
// clamped to base±jitter and minTemperature. Zero jitter returns base.
func SampleTemperature(base, jitter float32) float32 {
	if jitter <= 0 {
		return base
	}
	t := base + float32(rand.NormFloat64())*jitter/2
	t = min(max(t, base-jitter), base+jitter)
	return max(t, minTemperature)
}
