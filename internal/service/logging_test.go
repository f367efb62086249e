package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashText(t *testing.T) {
	h := HashText("Backend Engineer")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashText("  backend engineer\n"))
	assert.NotEqual(t, h, HashText("Frontend Engineer"))
	assert.NotContains(t, h, "Backend")
}
