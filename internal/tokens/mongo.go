package tokens

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store using a Mongo collection with a unique index
// on "token".
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoStore{col: col}
}

func (s *MongoStore) Find(ctx context.Context, token string) (*Token, error) {
	var t Token
	if err := s.col.FindOne(ctx, bson.M{"token": token}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *MongoStore) Insert(ctx context.Context, token string, expiry time.Time) error {
	existing, err := s.Find(ctx, token)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrExists
	}
	_, err = s.col.InsertOne(ctx, Token{Token: token, ExpiryDate: expiry})
	if mongo.IsDuplicateKeyError(err) {
		return ErrExists
	}
	return err
}
