package notes

import "slices"

// DefaultColor is the accent color given to new notes.
const DefaultColor = "#4F46E5"

// Swatch is one entry of the accent palette offered by the UI.
type Swatch struct {
	Name  string `json:"name" example:"Indigo"`
	Value string `json:"value" example:"#4F46E5"`
}

// Palette lists the accent colors the UI offers. Colors are not validated
// against it: any string is accepted.
var Palette = []Swatch{
	{Name: "Indigo", Value: "#4F46E5"},
	{Name: "Rose", Value: "#E11D48"},
	{Name: "Emerald", Value: "#059669"},
	{Name: "Amber", Value: "#D97706"},
	{Name: "Violet", Value: "#7C3AED"},
	{Name: "Cyan", Value: "#0891B2"},
	{Name: "Slate", Value: "#475569"},
}

// Note is a single personal note.
type Note struct {
	ID         string   `bson:"_id" json:"id" yaml:"id" example:"0b5c3cf4-3a44-4a6e-9db4-1f5a4c0f8a21"`
	Title      string   `bson:"title" json:"title" yaml:"title" example:"Groceries"`
	Content    string   `bson:"content" json:"content" yaml:"content" example:"milk, eggs"`
	Tags       []string `bson:"tags" json:"tags" yaml:"tags" example:"home,shopping"`
	UpdatedAt  int64    `bson:"updated_at" json:"updatedAt" yaml:"updatedAt" example:"1717282826005"`
	Color      string   `bson:"color" json:"color" yaml:"color" example:"#4F46E5"`
	IsFavorite bool     `bson:"is_favorite" json:"isFavorite" yaml:"isFavorite" example:"false"`
	IsPinned   bool     `bson:"is_pinned" json:"isPinned" yaml:"isPinned" example:"false"`
}

// Clone returns a copy that shares no memory with n.
func (n Note) Clone() Note {
	c := n
	c.Tags = slices.Clone(n.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// Event types carried by NoteEvent.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"` // "created", "updated", "deleted"
	Note *Note  `json:"note"`
}

// DeletedNoteData represents the minimal data for a deleted note event
type DeletedNoteData struct {
	ID string `json:"id"`
}
