package content

import (
	"sort"
	"time"
)

// Status is the publication state of an item at a point in time.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

// StatusAt derives the item's status at now. It is never stored.
func (i Item) StatusAt(now time.Time) Status {
	if !i.Published {
		return StatusDraft
	}
	if i.EffectiveDate().After(now) {
		return StatusScheduled
	}
	return StatusPublished
}

// VisibleAt reports whether the item is publicly visible at now.
func (i Item) VisibleAt(now time.Time) bool {
	return i.StatusAt(now) == StatusPublished
}

// StatusEntry pairs an item with its status for admin listings.
type StatusEntry struct {
	Item   Item   `json:"item"`
	Status Status `json:"status"`
}

// Statuses derives the status of every item using the same now.
func Statuses(items []Item, now time.Time) []StatusEntry {
	out := make([]StatusEntry, 0, len(items))
	for _, it := range items {
		out = append(out, StatusEntry{Item: it, Status: it.StatusAt(now)})
	}
	return out
}

// Calendar buckets non-draft items by the local calendar period their
// effective date falls in. Upcoming holds every scheduled item, soonest
// first.
type Calendar struct {
	Today     []Item `json:"today"`
	ThisWeek  []Item `json:"thisWeek"`
	ThisMonth []Item `json:"thisMonth"`
	Upcoming  []Item `json:"upcoming"`
}

// BuildCalendar groups items relative to now in now's location. Weeks start
// on Sunday.
func BuildCalendar(items []Item, now time.Time) Calendar {
	loc := now.Location()
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	cal := Calendar{
		Today:     []Item{},
		ThisWeek:  []Item{},
		ThisMonth: []Item{},
		Upcoming:  []Item{},
	}
	for _, it := range items {
		status := it.StatusAt(now)
		if status == StatusDraft {
			continue
		}
		at := it.EffectiveDate().In(loc)
		if within(at, dayStart, dayEnd) {
			cal.Today = append(cal.Today, it)
		}
		if within(at, weekStart, weekEnd) {
			cal.ThisWeek = append(cal.ThisWeek, it)
		}
		if within(at, monthStart, monthEnd) {
			cal.ThisMonth = append(cal.ThisMonth, it)
		}
		if status == StatusScheduled {
			cal.Upcoming = append(cal.Upcoming, it)
		}
	}
	sort.SliceStable(cal.Upcoming, func(i, j int) bool {
		return cal.Upcoming[i].EffectiveDate().Before(cal.Upcoming[j].EffectiveDate())
	})
	return cal
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
