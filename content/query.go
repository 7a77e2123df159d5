package content

import (
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type SortKey string

const (
	SortByTitle       SortKey = "title"
	SortByCreatedAt   SortKey = "createdAt"
	SortByUpdatedAt   SortKey = "updatedAt"
	SortByPublishedAt SortKey = "publishedAt"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// QueryOptions selects a page of items. Zero values mean: no filter, page 1,
// DefaultLimit items, newest publishedAt first.
type QueryOptions struct {
	// Published true keeps items visible at the query time; false keeps
	// drafts and scheduled items.
	Published *bool
	Featured  *bool
	Category  string
	// Tags matches items carrying any of the tags.
	Tags []string
	// Search, when set, replaces the starting collection with the search
	// result before the other filters run.
	Search    string
	Page      int
	Limit     int
	SortBy    SortKey
	SortOrder SortOrder
}

// Pagination describes the returned window.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Result is one page of a query.
type Result struct {
	Data       []Item     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Validate rejects negative paging, oversized limits and unknown sort
// options with a validation error.
func (q QueryOptions) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(1)),
		validation.Field(&q.Limit, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&q.SortBy, validation.In(SortByTitle, SortByCreatedAt, SortByUpdatedAt, SortByPublishedAt)),
		validation.Field(&q.SortOrder, validation.In(SortAsc, SortDesc)),
	)
	return validationError(err, "invalid query", codeInvalidQuery)
}

func (q QueryOptions) withDefaults() QueryOptions {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = SortByPublishedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = SortDesc
	}
	return q
}

// Apply filters, sorts and paginates items at now. items is not modified.
func Apply(items []Item, opts QueryOptions, now time.Time) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	pool := items
	if strings.TrimSpace(opts.Search) != "" {
		pool = FilterSearch(items, opts.Search)
	}

	filtered := make([]Item, 0, len(pool))
	for _, it := range pool {
		if opts.Published != nil && (it.StatusAt(now) == StatusPublished) != *opts.Published {
			continue
		}
		if opts.Featured != nil && it.Featured != *opts.Featured {
			continue
		}
		if opts.Category != "" && !strings.EqualFold(it.Category, opts.Category) {
			continue
		}
		if len(opts.Tags) > 0 && !hasAnyTag(it.Tags, opts.Tags) {
			continue
		}
		filtered = append(filtered, it)
	}

	SortItems(filtered, opts.SortBy, opts.SortOrder)

	total := len(filtered)
	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	data := make([]Item, end-start)
	copy(data, filtered[start:end])

	return Result{
		Data: data,
		Pagination: Pagination{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: (total + opts.Limit - 1) / opts.Limit,
		},
	}, nil
}

// SortItems sorts in place by key and order. Equal keys keep their order.
func SortItems(items []Item, key SortKey, order SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compareBy(items[i], items[j], key)
		if order == SortAsc {
			return c < 0
		}
		return c > 0
	})
}

func compareBy(a, b Item, key SortKey) int {
	switch key {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.EffectiveDate().Compare(b.EffectiveDate())
	}
}

func hasAnyTag(itemTags, wanted []string) bool {
	for _, t := range itemTags {
		for _, w := range wanted {
			if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}
