package content

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Document is a markdown file split into its header and body.
type Document struct {
	Front Frontmatter
	Body  string
}

// ParseDocument splits src at the YAML frontmatter delimiters and decodes the
// header. A document without a header yields an empty Frontmatter. Required
// fields are not checked here.
func ParseDocument(src []byte) (Document, error) {
	if opensFrontmatter(src) {
		if _, _, ok := splitFrontmatter(src); !ok {
			return Document{}, fmt.Errorf("parse frontmatter: opening --- has no closing delimiter")
		}
	}
	var front map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &front, yamlFormat)
	if err != nil {
		return Document{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	if front == nil {
		front = map[string]any{}
	}
	return Document{Front: Frontmatter(front), Body: string(body)}, nil
}

// Frontmatter is the decoded header of a document. Its accessors absorb the
// loose shapes authors write (strings for numbers, comma lists for sequences)
// so nothing past the builder sees them.
type Frontmatter map[string]any

// String returns the trimmed string value of key, stringifying scalars.
func (f Frontmatter) String(key string) string {
	return scalarString(f[key])
}

// Bool returns the boolean value of key, or def when absent or unrecognised.
func (f Frontmatter) Bool(key string, def bool) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Int returns the integer value of key, or 0.
func (f Frontmatter) Int(key string) int {
	return int(math.Round(f.Float(key)))
}

// Float returns the numeric value of key, or 0.
func (f Frontmatter) Float(key string) float64 {
	switch v := f[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Time returns the timestamp at key. ok is false when the key is absent or
// empty; a present but unparseable value is an error.
func (f Frontmatter) Time(key string) (t time.Time, ok bool, err error) {
	switch v := f[key].(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false, nil
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("field %s: invalid date %q: %w", key, s, err)
		}
		return t, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("field %s: invalid date %v", key, v)
	}
}

// Map returns the nested mapping at key, or nil.
func (f Frontmatter) Map(key string) Frontmatter {
	return asMap(f[key])
}

// Strings returns key as a string sequence using the tag rules.
func (f Frontmatter) Strings(key string) []string {
	return NormalizeTags(f[key])
}

// Tags returns the normalized tag list.
func (f Frontmatter) Tags() []string {
	return NormalizeTags(f["tags"])
}

// Image returns the image at key.
func (f Frontmatter) Image(key string) (ImageMeta, bool) {
	return ParseImage(f[key])
}

// Images returns the images listed at key. Entries that are neither a URL
// string nor an object with a url are skipped.
func (f Frontmatter) Images(key string) []ImageMeta {
	list, ok := f[key].([]any)
	if !ok {
		if img, ok := ParseImage(f[key]); ok {
			return []ImageMeta{img}
		}
		return nil
	}
	out := make([]ImageMeta, 0, len(list))
	for _, v := range list {
		if img, ok := ParseImage(v); ok {
			out = append(out, img)
		}
	}
	return out
}

// Author returns the author at key, accepting a bare name or an object.
func (f Frontmatter) Author(key string) *Author {
	switch v := f[key].(type) {
	case string:
		if name := strings.TrimSpace(v); name != "" {
			return &Author{Name: name}
		}
	default:
		m := asMap(v)
		if m == nil {
			return nil
		}
		a := &Author{Name: m.String("name"), Email: m.String("email"), Avatar: m.String("avatar")}
		if a.Name == "" && a.Email == "" {
			return nil
		}
		return a
	}
	return nil
}

// NormalizeTags turns a comma separated string or a sequence into a clean
// string slice. Anything else yields an empty slice.
func NormalizeTags(v any) []string {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		parts = make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, scalarString(e))
		}
	default:
		return []string{}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asMap(v any) Frontmatter {
	switch m := v.(type) {
	case map[string]any:
		return Frontmatter(m)
	case Frontmatter:
		return m
	case map[any]any:
		out := make(Frontmatter, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
