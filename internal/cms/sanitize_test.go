package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/scrollsite/internal/blog"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`[{"_id":"1"}]`, `[{"_id":"1"}]`},
		{`Connected successfully[{"_id":"1"}]`, `[{"_id":"1"}]`},
		{"  Connected successfully\n{\"url\":\"x\"}", `{"url":"x"}`},
		{`no json here`, `no json here`},
		{``, ``},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(Sanitize([]byte(tt.in))), tt.in)
	}
}

func TestDecodeList(t *testing.T) {
	posts, ok := decodeList[blog.Post]([]byte(`Connected successfully[{"_id":"a","title":"One"},{"_id":"b","title":"Two"}]`))
	assert.True(t, ok)
	if assert.Len(t, posts, 2) {
		assert.Equal(t, "One", posts[0].Title)
		assert.Equal(t, "b", posts[1].ID)
	}

	for _, bad := range []string{`Connected successfully`, `{"error":"db down"}`, `[{"_id":`, `null`, ``} {
		posts, ok := decodeList[blog.Post]([]byte(bad))
		assert.False(t, ok, bad)
		assert.NotNil(t, posts, bad)
		assert.Empty(t, posts, bad)
	}
}
