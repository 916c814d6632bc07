package responder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhatlangDetector(t *testing.T) {
	d := WhatlangDetector{}

	code, _ := d.Detect("hi")
	assert.Equal(t, undetermined, code)

	code, name := d.Detect("Could you please explain how the garbage collector works in modern programming languages and why it matters?")
	assert.Equal(t, "eng", code)
	assert.Equal(t, "English", name)
}

func TestLanguagePolicy(t *testing.T) {
	p := newLanguagePolicy([]string{"eng", "spa"}, []string{"jpn"})

	assert.True(t, p.allowed("eng"))
	assert.False(t, p.allowed("jpn"))
	assert.True(t, p.rejected("jpn"))
	assert.False(t, p.rejected("und"))
}
