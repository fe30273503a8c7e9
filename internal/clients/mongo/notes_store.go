package mongo

import (
	"context"
	"fmt"

	"lumina/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesCollection holds one document per note.
const NotesCollection = "lumina_notes_data"

// noteDoc is a note plus its index in the collection order.
type noteDoc struct {
	notes.Note `bson:",inline"`
	Position   int `bson:"position"`
}

// NotesStore implements notes.Store on a MongoDB collection.
type NotesStore struct {
	collection *mongo.Collection
}

// NewNotesStore creates the store and its position index.
func NewNotesStore(parentCtx context.Context, db *mongo.Database) (*NotesStore, error) {
	collection := db.Collection(NotesCollection)

	ctx, cancel := WithOpTimeout(parentCtx, OpTimeout)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "position", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create position index: %w", err)
	}

	return &NotesStore{collection: collection}, nil
}

// Load returns every note ordered by position.
func (s *NotesStore) Load(parent context.Context) ([]notes.Note, error) {
	ctx, cancel := WithOpTimeout(parent, OpTimeout)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	var docs []noteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return fromDocs(docs), nil
}

// Save upserts every note with its position and removes the ones no
// longer in the list.
func (s *NotesStore) Save(parent context.Context, list []notes.Note) error {
	ctx, cancel := WithOpTimeout(parent, OpTimeout)
	defer cancel()

	ids := make([]string, 0, len(list))
	models := make([]mongo.WriteModel, 0, len(list))
	for _, doc := range toDocs(list) {
		ids = append(ids, doc.ID)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if len(models) > 0 {
		if _, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("write notes: %w", err)
		}
	}

	if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("prune notes: %w", err)
	}
	return nil
}

// Ping checks the server behind the collection.
func (s *NotesStore) Ping(ctx context.Context) error {
	return drv.Ping(ctx, s.collection.Database().Client())
}

func toDocs(list []notes.Note) []noteDoc {
	docs := make([]noteDoc, len(list))
	for i, n := range list {
		docs[i] = noteDoc{Note: n.Clone(), Position: i}
	}
	return docs
}

func fromDocs(docs []noteDoc) []notes.Note {
	list := make([]notes.Note, len(docs))
	for i, d := range docs {
		list[i] = d.Note.Clone()
	}
	return list
}
