package editor

import (
	"slices"

	"lumina/internal/services/notes"
)

// Buffer holds the editable fields of the open note.
type Buffer struct {
	Title   string   `json:"title" example:"Groceries"`
	Content string   `json:"content" example:"milk, eggs"`
	Tags    []string `json:"tags" example:"home"`
	Color   string   `json:"color" example:"#4F46E5"`
}

// BufferFrom copies the editable fields out of n.
func BufferFrom(n notes.Note) Buffer {
	return Buffer{
		Title:   n.Title,
		Content: n.Content,
		Tags:    slices.Clone(n.Tags),
		Color:   n.Color,
	}.clone()
}

// Equal compares field by field, tags in order.
func (b Buffer) Equal(o Buffer) bool {
	return b.Title == o.Title &&
		b.Content == o.Content &&
		b.Color == o.Color &&
		slices.Equal(b.Tags, o.Tags)
}

// ApplyTo overlays the buffer onto n.
func (b Buffer) ApplyTo(n notes.Note) notes.Note {
	n.Title = b.Title
	n.Content = b.Content
	n.Tags = slices.Clone(b.Tags)
	n.Color = b.Color
	return n
}

func (b Buffer) clone() Buffer {
	c := b
	c.Tags = slices.Clone(b.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}
