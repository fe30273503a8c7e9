package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []Note) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func sampleCollection() []Note {
	return []Note{
		{ID: "1", Title: "Groceries", Content: "milk", Tags: []string{"home"}, UpdatedAt: 10},
		{ID: "2", Title: "Standup", Content: "Sprint REVIEW", Tags: []string{"work"}, UpdatedAt: 30, IsPinned: true},
		{ID: "3", Title: "Ideas", Content: "review books", Tags: []string{"work", "reading"}, UpdatedAt: 20, IsFavorite: true},
		{ID: "4", Title: "Trip", Content: "", Tags: []string{}, UpdatedAt: 20},
		{ID: "5", Title: "Pinned fav", Content: "", Tags: []string{"home"}, UpdatedAt: 40, IsPinned: true, IsFavorite: true},
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name        string
		filter      Filter
		wantPinned  []string
		wantRegular []string
	}{
		{
			name:        "everything",
			filter:      Filter{},
			wantPinned:  []string{"5", "2"},
			wantRegular: []string{"3", "4", "1"},
		},
		{
			name:        "search is case-insensitive on title or content",
			filter:      Filter{Search: "review"},
			wantPinned:  []string{"2"},
			wantRegular: []string{"3"},
		},
		{
			name:        "search matches title",
			filter:      Filter{Search: "GROC"},
			wantPinned:  []string{},
			wantRegular: []string{"1"},
		},
		{
			name:        "tag must match exactly",
			filter:      Filter{Tag: "work"},
			wantPinned:  []string{"2"},
			wantRegular: []string{"3"},
		},
		{
			name:        "tag is not a substring match",
			filter:      Filter{Tag: "wor"},
			wantPinned:  []string{},
			wantRegular: []string{},
		},
		{
			name:        "favorites",
			filter:      Filter{View: ViewFavorites},
			wantPinned:  []string{"5"},
			wantRegular: []string{"3"},
		},
		{
			name:        "all criteria combined",
			filter:      Filter{Search: "books", Tag: "reading", View: ViewFavorites},
			wantPinned:  []string{},
			wantRegular: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Query(sampleCollection(), tt.filter)
			assert.Equal(t, tt.wantPinned, ids(v.Pinned))
			assert.Equal(t, tt.wantRegular, ids(v.Regular))
		})
	}
}

func TestQuery_StableTiesKeepCollectionOrder(t *testing.T) {
	collection := []Note{
		{ID: "a", UpdatedAt: 5},
		{ID: "b", UpdatedAt: 5},
		{ID: "c", UpdatedAt: 9},
		{ID: "d", UpdatedAt: 5},
	}
	v := Query(collection, Filter{})
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(v.All()))
}

func TestQuery_EmptyCollection(t *testing.T) {
	v := Query(nil, Filter{Search: "x"})
	assert.NotNil(t, v.Pinned)
	assert.NotNil(t, v.Regular)
	assert.Empty(t, v.All())
}

func TestTags_FirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"home", "work", "reading"}, Tags(sampleCollection()))
	assert.Equal(t, []string{}, Tags(nil))
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "#work", Heading(Filter{Tag: "work", View: ViewFavorites}))
	assert.Equal(t, "Favorites", Heading(Filter{View: ViewFavorites}))
	assert.Equal(t, "My Thoughts", Heading(Filter{}))
}

func TestParseViewMode(t *testing.T) {
	v, err := ParseViewMode("")
	require.NoError(t, err)
	assert.Equal(t, ViewAll, v)

	v, err = ParseViewMode("Favorites")
	require.NoError(t, err)
	assert.Equal(t, ViewFavorites, v)

	_, err = ParseViewMode("trash")
	assert.ErrorIs(t, err, ErrBadRequest)
}
