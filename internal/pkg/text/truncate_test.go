package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "ØØ...", Truncate("ØØØØ", 2))
	assert.Equal(t, "keep", Truncate("keep", 0))
}
