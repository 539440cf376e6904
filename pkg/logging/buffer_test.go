package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTailBuffer(t *testing.T) {
	b := NewTailBuffer(3)
	assert.Empty(t, b.Last())
	assert.Empty(t, b.Recent(5))

	_, _ = b.Write([]byte("one\n"))
	_, _ = b.Write([]byte("two\nthree\n\n"))
	assert.Equal(t, []string{"one", "two", "three"}, b.Recent(5))

	_, _ = b.Write([]byte("four\n"))
	assert.Equal(t, "four", b.Last())
	assert.Equal(t, []string{"two", "three", "four"}, b.Recent(3))
	assert.Equal(t, []string{"three", "four"}, b.Recent(2))
}
