package edgetts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSSML(t *testing.T) {
	got := buildSSML("en-GB-RyanNeural", "Up next: the weather")
	assert.Equal(t, "<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-GB'>"+
		"<voice name='en-GB-RyanNeural'>Up next: the weather</voice></speak>", got)
}

func TestBuildSSML_Escaping(t *testing.T) {
	for in, want := range map[string]string{
		"Simon & Garfunkel":    "Simon &amp; Garfunkel",
		"<break/> isn't here":  "&lt;break/&gt; isn&apos;t here",
		`the "Breakfast" show`: "the &quot;Breakfast&quot; show",
	} {
		assert.Contains(t, buildSSML("en-US-AvaNeural", in), want, in)
	}
}

func TestBuildSSML_ShortVoiceFallsBackToEnUS(t *testing.T) {
	assert.Contains(t, buildSSML("ava", "hi"), "xml:lang='en-US'")
}
