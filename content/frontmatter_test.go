package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"comma string", "go, web , ,cms", []string{"go", "web", "cms"}},
		{"sequence", []any{" go", "web", "", 42}, []string{"go", "web", "42"}},
		{"string slice", []string{"a", " b "}, []string{"a", "b"}},
		{"nil", nil, []string{}},
		{"number", 12, []string{}},
		{"mapping", map[string]any{"a": 1}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte("---\ntitle: Hello\ntags: a, b\nrating: \"4.5\"\n---\n# Body\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Front.String("title"))
	assert.Equal(t, []string{"a", "b"}, doc.Front.Tags())
	assert.InDelta(t, 4.5, doc.Front.Float("rating"), 0.0001)
	assert.Contains(t, doc.Body, "# Body")
}

func TestParseDocumentWithoutHeader(t *testing.T) {
	doc, err := ParseDocument([]byte("just a body\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Front)
	assert.Contains(t, doc.Body, "just a body")
}

func TestParseDocumentMalformed(t *testing.T) {
	_, err := ParseDocument([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	assert.Error(t, err)
}

func TestParseDocumentUnclosedHeader(t *testing.T) {
	for _, src := range []string{
		"---\ntitle: T\nbody without a closing delimiter\n",
		"\xef\xbb\xbf---\ntitle: T\n",
	} {
		_, err := ParseDocument([]byte(src))
		assert.Error(t, err, "ParseDocument(%q)", src)
	}

	doc, err := ParseDocument([]byte("---\n---\nEmpty header.\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Front)
	assert.Contains(t, doc.Body, "Empty header.")
}

func TestFrontmatterTime(t *testing.T) {
	f := Frontmatter{
		"date":   "2024-01-15",
		"stamp":  time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		"empty":  "",
		"broken": "2024-13-45",
	}

	got, ok, err := f.Time("date")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), "date = %v", got)

	got, ok, err = f.Time("stamp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, ok, err = f.Time("empty")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.Time("missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = f.Time("broken")
	assert.Error(t, err)
}

func TestFrontmatterBool(t *testing.T) {
	f := Frontmatter{"a": true, "b": "false", "c": "maybe"}
	assert.True(t, f.Bool("a", false))
	assert.False(t, f.Bool("b", true))
	assert.True(t, f.Bool("c", true))
	assert.True(t, f.Bool("missing", true))
}

func TestFrontmatterAuthor(t *testing.T) {
	f := Frontmatter{
		"plain":  "Ada",
		"object": map[string]any{"name": "Grace", "email": "grace@example.com"},
		"empty":  map[string]any{},
	}
	require.NotNil(t, f.Author("plain"))
	assert.Equal(t, "Ada", f.Author("plain").Name)
	require.NotNil(t, f.Author("object"))
	assert.Equal(t, "grace@example.com", f.Author("object").Email)
	assert.Nil(t, f.Author("empty"))
	assert.Nil(t, f.Author("missing"))
}
