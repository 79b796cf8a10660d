package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_ErrorView(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "error", map[string]any{
		"title":      "Something went wrong!",
		"msg":        "<script>alert(1)</script>",
		"statusCode": 404,
	}, nil)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<title>Something went wrong!</title>")
	assert.Contains(t, html, "404")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestRenderer_UnknownView(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, "missing", nil, nil))
	assert.Empty(t, buf.String())
}
