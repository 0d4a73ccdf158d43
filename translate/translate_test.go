package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	defer SetLocale(DEFAULT_LOCALE)

	for _, locales := range [][]string{
		nil,
		{"de-DE"},
		{"xx-unknown", "en-GB"},
	} {
		SetLocale(locales...)
		assert.Equal("line 3 stack underflow", From("line %d %v", 3, "stack underflow"), locales)
		assert.Equal("$(1 +) is not a valid expression", From("$(%v) is not a valid expression", "1 +"), locales)
	}
}
