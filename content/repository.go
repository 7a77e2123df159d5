package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eringen/inkpress/logger"
)

// Option configures a Repository or Publisher.
type Option func(*options)

type options struct {
	log     logger.Logger
	builder BuilderConfig
}

// WithLogger sets the logger used for skipped files and warnings.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithBuilderConfig sets how items are built.
func WithBuilderConfig(cfg BuilderConfig) Option {
	return func(o *options) { o.builder = cfg }
}

func newOptions(opts []Option) options {
	o := options{log: logger.Log}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Repository loads content collections from a directory laid out as
// <root>/{posts,pages,reviews}/*.md. It keeps no state between calls.
type Repository struct {
	root    string
	builder *Builder
	log     logger.Logger
}

// NewRepository creates a Repository rooted at dir.
func NewRepository(dir string, opts ...Option) *Repository {
	o := newOptions(opts)
	return &Repository{
		root:    dir,
		builder: NewBuilder(o.builder),
		log:     o.log,
	}
}

// Root returns the content directory.
func (r *Repository) Root() string { return r.root }

// ParseType resolves a singular or plural type name.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "post", "posts":
		return TypePost, nil
	case "page", "pages":
		return TypePage, nil
	case "review", "reviews":
		return TypeReview, nil
	}
	return "", validationError(fmt.Errorf("unknown content type %q", s), "invalid content type", codeInvalidType)
}

func (r *Repository) dir(t Type) string {
	return filepath.Join(r.root, t.Dir())
}

// Load builds every markdown file of type t, newest effective date first.
// A missing directory is created and yields an empty collection. Files that
// fail to parse are logged and skipped.
func (r *Repository) Load(ctx context.Context, t Type) ([]Item, error) {
	files := listMarkdown(r.dir(t), r.log)
	items := make([]Item, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := r.builder.BuildFile(path, t)
		if err != nil {
			logger.WarnWithFields(r.log, "skipping content file", logger.Fields{
				"path":  path,
				"type":  string(t),
				"error": err.Error(),
			})
			continue
		}
		items = append(items, item)
	}

	SortByDate(items)
	r.warnDuplicateSlugs(t, items)
	return items, nil
}

// LoadAll loads posts, pages and reviews in that order.
func (r *Repository) LoadAll(ctx context.Context) ([]Item, error) {
	var all []Item
	for _, t := range Types {
		items, err := r.Load(ctx, t)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// BySlug returns the first item of type t whose slug matches. ok is false
// when nothing matches.
func (r *Repository) BySlug(ctx context.Context, t Type, slug string) (Item, bool, error) {
	items, err := r.Load(ctx, t)
	if err != nil {
		return Item{}, false, err
	}
	item, ok := FindBySlug(items, slug)
	return item, ok, nil
}

// Search loads the given types (all when none) and keeps items matching
// every token of query. Order follows the collections, not relevance.
func (r *Repository) Search(ctx context.Context, query string, types ...Type) ([]Item, error) {
	if len(types) == 0 {
		types = Types
	}
	var pool []Item
	for _, t := range types {
		items, err := r.Load(ctx, t)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
	}
	return FilterSearch(pool, query), nil
}

// Query loads type t and applies opts at now.
func (r *Repository) Query(ctx context.Context, t Type, opts QueryOptions, now time.Time) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	items, err := r.Load(ctx, t)
	if err != nil {
		return Result{}, err
	}
	return Apply(items, opts, now)
}

// FindBySlug linearly scans items for slug.
func FindBySlug(items []Item, slug string) (Item, bool) {
	for _, it := range items {
		if it.Slug == slug {
			return it, true
		}
	}
	return Item{}, false
}

// FilterSearch keeps items whose title, excerpt, content, tags and category
// contain every whitespace-separated token of query, case-insensitively.
// An empty query keeps everything.
func FilterSearch(items []Item, query string) []Item {
	tokens := strings.Fields(strings.ToLower(query))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if matchesAll(searchText(it), tokens) {
			out = append(out, it)
		}
	}
	return out
}

func searchText(it Item) string {
	parts := []string{it.Title, it.Excerpt, it.Content, strings.Join(it.Tags, " "), it.Category}
	return strings.ToLower(strings.Join(parts, " "))
}

func matchesAll(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// SortByDate orders items by effective date, newest first.
func SortByDate(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EffectiveDate().After(items[j].EffectiveDate())
	})
}

func (r *Repository) warnDuplicateSlugs(t Type, items []Item) {
	seen := make(map[string]string, len(items))
	for _, it := range items {
		if first, ok := seen[it.Slug]; ok {
			logger.WarnWithFields(r.log, "duplicate slug, first match wins on lookup", logger.Fields{
				"type":  string(t),
				"slug":  it.Slug,
				"first": first,
				"other": it.ID,
			})
			continue
		}
		seen[it.Slug] = it.ID
	}
}

// listMarkdown returns the .md files directly under dir in name order. A
// missing dir is created; any directory error is logged and yields no files.
func listMarkdown(dir string, log logger.Logger) []string {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Errorf("create content dir %s: %v", dir, err)
			return nil
		}
		log.Infof("created missing content directory %s", dir)
		return nil
	}
	if err != nil {
		log.Errorf("read content dir %s: %v", dir, err)
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}
