package notes

import (
	"sort"
	"strings"
)

// ViewMode selects which notes a listing shows.
type ViewMode string

const (
	ViewAll       ViewMode = "all"
	ViewFavorites ViewMode = "favorites"
)

// ParseViewMode maps a query value to a ViewMode; empty means all.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewFavorites:
		return ViewFavorites, nil
	default:
		return "", ErrBadRequest
	}
}

// Filter holds the listing criteria.
type Filter struct {
	Search string
	Tag    string
	View   ViewMode
}

// View is a filtered listing split into the pinned and regular groups.
type View struct {
	Pinned  []Note `json:"pinned"`
	Regular []Note `json:"regular"`
}

// All returns the pinned group followed by the regular group.
func (v View) All() []Note {
	out := make([]Note, 0, len(v.Pinned)+len(v.Regular))
	out = append(out, v.Pinned...)
	return append(out, v.Regular...)
}

// Matches reports whether n passes every criterion of f.
func Matches(n Note, f Filter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			return false
		}
	}
	if f.Tag != "" {
		found := false
		for _, t := range n.Tags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.View == ViewFavorites && !n.IsFavorite {
		return false
	}
	return true
}

// Query filters the collection and partitions it into pinned and regular
// groups, each sorted by updatedAt descending. Ties keep collection order.
func Query(collection []Note, f Filter) View {
	v := View{Pinned: []Note{}, Regular: []Note{}}
	for _, n := range collection {
		if !Matches(n, f) {
			continue
		}
		if n.IsPinned {
			v.Pinned = append(v.Pinned, n)
		} else {
			v.Regular = append(v.Regular, n)
		}
	}
	byRecent := func(list []Note) func(i, j int) bool {
		return func(i, j int) bool { return list[i].UpdatedAt > list[j].UpdatedAt }
	}
	sort.SliceStable(v.Pinned, byRecent(v.Pinned))
	sort.SliceStable(v.Regular, byRecent(v.Regular))
	return v
}

// Tags returns the distinct tags of the collection in first-seen order.
func Tags(collection []Note) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range collection {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Heading is the title shown above a listing.
func Heading(f Filter) string {
	switch {
	case f.Tag != "":
		return "#" + f.Tag
	case f.View == ViewFavorites:
		return "Favorites"
	default:
		return "My Thoughts"
	}
}
