package admins

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for the admin registry
type Repository interface {
	Upsert(ctx context.Context, a *Admin) (*Admin, error)
	GetByUID(ctx context.Context, uid string) (*Admin, error)
	List(ctx context.Context) ([]*Admin, error)
	Delete(ctx context.Context, uid string) error
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Upsert(ctx context.Context, a *Admin) (*Admin, error) {
	if a.AddedAt.IsZero() {
		a.AddedAt = time.Now().UTC()
	}
	filter := bson.M{"_id": a.UID}
	update := bson.M{
		"$set":         bson.M{"email": a.Email, "role": a.Role},
		"$setOnInsert": bson.M{"addedAt": a.AddedAt, "addedBy": a.AddedBy},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated Admin
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return a, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) GetByUID(ctx context.Context, uid string) (*Admin, error) {
	var a Admin
	if err := r.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*Admin, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Admin{}
	for cur.Next(ctx) {
		var a Admin
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": uid})
	return err
}
