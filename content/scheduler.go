package content

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/inkpress/logger"
)

// Published records one file flipped by the publisher.
type Published struct {
	Type        Type      `json:"type"`
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Path        string    `json:"path"`
	PublishedAt time.Time `json:"publishedAt"`
	FlippedAt   time.Time `json:"flippedAt"`
}

// Publisher rewrites the frontmatter of items whose publish date has passed.
// Runs are serialized within a process only; two processes pointed at the
// same directory can race on a file.
type Publisher struct {
	root string
	log  logger.Logger
	mu   sync.Mutex
}

// NewPublisher creates a Publisher over the content root dir.
func NewPublisher(dir string, opts ...Option) *Publisher {
	o := newOptions(opts)
	return &Publisher{root: dir, log: o.log}
}

// PublishDue finds files with published true and publishedAt at or before
// now whose lastModified is missing or older than publishedAt, and sets
// published: true and lastModified: now in their frontmatter. Running it
// again is a no-op.
func (p *Publisher) PublishDue(ctx context.Context, now time.Time) ([]Published, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var flipped []Published
	for _, t := range Types {
		for _, path := range listMarkdown(filepath.Join(p.root, t.Dir()), p.log) {
			if err := ctx.Err(); err != nil {
				return flipped, err
			}
			rec, ok, err := p.publishFile(path, t, now)
			if err != nil {
				logger.WarnWithFields(p.log, "publish scheduler skipped file", logger.Fields{
					"path":  path,
					"error": err.Error(),
				})
				continue
			}
			if ok {
				logger.InfoWithFields(p.log, "published scheduled content", logger.Fields{
					"type": string(t),
					"id":   rec.ID,
					"slug": rec.Slug,
				})
				flipped = append(flipped, rec)
			}
		}
	}
	return flipped, nil
}

func (p *Publisher) publishFile(path string, t Type, now time.Time) (Published, bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Published{}, false, err
	}
	doc, err := ParseDocument(src)
	if err != nil {
		return Published{}, false, err
	}
	due, publishedAt, err := isDue(doc.Front, now)
	if err != nil || !due {
		return Published{}, false, err
	}

	header, body, ok := splitFrontmatter(src)
	if !ok {
		return Published{}, false, fmt.Errorf("frontmatter delimiters not found")
	}
	rewritten, err := rewriteHeader(header, now)
	if err != nil {
		return Published{}, false, err
	}

	var out bytes.Buffer
	out.WriteString("---\n")
	out.Write(rewritten)
	out.WriteString("---\n")
	out.Write(body)
	if err := writeFileAtomic(path, out.Bytes()); err != nil {
		return Published{}, false, err
	}

	id := idFromPath(path)
	title := firstNonEmpty(doc.Front.String("title"), id)
	return Published{
		Type:        t,
		ID:          id,
		Slug:        firstNonEmpty(doc.Front.String("slug"), Slugify(title), id),
		Path:        path,
		PublishedAt: publishedAt,
		FlippedAt:   now,
	}, true, nil
}

func isDue(front Frontmatter, now time.Time) (bool, time.Time, error) {
	if !front.Bool("published", true) {
		return false, time.Time{}, nil
	}
	publishedAt, err := optionalTime(front, "publishedAt", "date")
	if err != nil || publishedAt == nil || publishedAt.After(now) {
		return false, time.Time{}, err
	}
	lastModified, ok, err := front.Time("lastModified")
	if err != nil {
		return false, time.Time{}, err
	}
	if ok && !lastModified.Before(*publishedAt) {
		return false, time.Time{}, nil
	}
	return true, *publishedAt, nil
}

// splitFrontmatter returns the raw header between the --- delimiters and the
// body that follows the closing delimiter.
func splitFrontmatter(src []byte) (header, body []byte, ok bool) {
	if !opensFrontmatter(src) {
		return nil, nil, false
	}
	src = bytes.TrimPrefix(src, utf8BOM)
	rest := src[bytes.IndexByte(src, '\n')+1:]
	pos := 0
	for _, line := range bytes.SplitAfter(rest, []byte("\n")) {
		if string(bytes.TrimRight(line, "\r\n")) == "---" {
			return rest[:pos], rest[pos+len(line):], true
		}
		pos += len(line)
	}
	return nil, nil, false
}

var utf8BOM = []byte("\xef\xbb\xbf")

// opensFrontmatter reports whether the first line of src is a --- delimiter.
func opensFrontmatter(src []byte) bool {
	src = bytes.TrimPrefix(src, utf8BOM)
	nl := bytes.IndexByte(src, '\n')
	return nl >= 0 && string(bytes.TrimSpace(src[:nl])) == "---"
}

// rewriteHeader sets published and lastModified on the YAML mapping while
// keeping the other keys, their order and comments.
func rewriteHeader(header []byte, now time.Time) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter is not a mapping")
	}
	m := doc.Content[0]
	setScalar(m, "published", "!!bool", "true")
	setScalar(m, "lastModified", "!!timestamp", now.UTC().Format(time.RFC3339Nano))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setScalar(m *yaml.Node, key, tag, value string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			v := m.Content[i+1]
			v.Kind = yaml.ScalarNode
			v.Tag = tag
			v.Value = value
			v.Style = 0
			v.Content = nil
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value},
	)
}

// writeFileAtomic replaces path through a rename. The new inode carries a new
// birth time; publishedAt is always set on files written here.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".inkpress-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
