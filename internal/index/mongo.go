package index

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository on a MongoDB collection. Documents
// are stored one row per url with a unique index on "url".
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepository{col: col}
}

func (m *MongoRepository) Upsert(ctx context.Context, url, title, description string, fetchedAt time.Time) (UpsertResult, *Document, error) {
	var existing Document
	err := m.col.FindOne(ctx, bson.M{"url": url}).Decode(&existing)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return Unchanged, nil, err
		}
		doc := Document{URL: url, Title: title, Description: description, LastFetched: fetchedAt}
		if _, err := m.col.InsertOne(ctx, doc); err != nil {
			return Unchanged, nil, err
		}
		return Created, &doc, nil
	}

	if existing.Title == title && existing.Description == description {
		return Unchanged, &existing, nil
	}

	set := bson.M{"last_fetched": fetchedAt}
	if existing.Title != title {
		set["title"] = title
	}
	if existing.Description != description {
		set["description"] = description
	}
	if _, err := m.col.UpdateOne(ctx, bson.M{"url": url}, bson.M{"$set": set}); err != nil {
		return Unchanged, nil, err
	}
	updated := Document{URL: url, Title: title, Description: description, LastFetched: fetchedAt}
	return Updated, &updated, nil
}

func (m *MongoRepository) FindBySubstring(ctx context.Context, field Field, needle string, page int) ([]Document, error) {
	switch field {
	case FieldTitle, FieldURL, FieldDescription:
	default:
		return nil, ErrUnknownField
	}
	if page < 0 {
		page = 0
	}
	// case-insensitive containment; the needle is matched literally
	filter := bson.M{string(field): bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(needle), Options: "i"}}}
	opts := options.Find().SetSkip(int64(page) * PageSize).SetLimit(PageSize)
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Document{}
	for cur.Next(ctx) {
		var d Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}

func (m *MongoRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func (m *MongoRepository) All(ctx context.Context) ([]Document, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Document{}
	for cur.Next(ctx) {
		var d Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}
