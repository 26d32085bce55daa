package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(42), ParseUint("42"))
	assert.Equal(t, uint(0), ParseUint(""))
	assert.Equal(t, uint(0), ParseUint("abc"))
	assert.Equal(t, uint(0), ParseUint("-5"))
}

func TestGenerateRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:7:12:/apply", GenerateRateLimitKey(7, "12", "/apply"))
}

func TestPointer(t *testing.T) {
	n := Pointer(5)
	assert.Equal(t, 5, *n)

	s := Pointer("high")
	assert.Equal(t, "high", *s)
}
