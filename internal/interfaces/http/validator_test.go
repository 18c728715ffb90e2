package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@x.io"))
	assert.True(t, ValidEmail("  user.name+tag@example.co.uk  "))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("no-at-sign"))
	assert.False(t, ValidEmail("two@@x.io"))
	assert.False(t, ValidEmail("spaces in@x.io"))
	assert.False(t, ValidEmail(strings.Repeat("a", 251)+"@x.io")) // 256 chars, one over MaxEmailLength
}

func TestValidCompanyName(t *testing.T) {
	assert.True(t, ValidCompanyName("Acme"))
	assert.True(t, ValidCompanyName("O'Brien & Sons (Pvt.)"))
	assert.False(t, ValidCompanyName("A")) // too short
	assert.False(t, ValidCompanyName(strings.Repeat("a", 101)))
	assert.False(t, ValidCompanyName("<script>"))
	assert.False(t, ValidCompanyName("   "))
}
