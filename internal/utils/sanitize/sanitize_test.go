package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "Just plain text", want: "Just plain text"},
		{name: "script removed", in: "<script>alert('xss')</script>Hello", want: "Hello"},
		{name: "tags stripped", in: "<b>bold</b> move", want: "bold  move"},
		{name: "entities unescaped", in: "a < b &amp; c", want: "a < b & c"},
		{name: "line structure kept", in: "1. one\n  2. two\n", want: "1. one\n  2. two"},
		{name: "nbsp normalised", in: "x\u00a0y", want: "x y"},
		{name: "markdown preserved", in: "**markdown** text", want: "**markdown** text"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestLine(t *testing.T) {
	assert.Equal(t, "a b", Line("  <i>a</i>\n\tb  "))
	assert.Equal(t, "work", Line("work"))
	assert.Equal(t, "", Line("<br/>"))
}
