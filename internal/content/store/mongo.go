package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/luminedge/academy-cms/internal/content"
)

// MongoStore implements content.Store on a MongoDB collection. Each logical
// path is one document, keyed by _id, so a section read is a point read and
// a merge write is a single upsert.
//
// The server clock is MongoDB's own: ServerTimestamp tokens become
// $currentDate fields, resolved on the primary at commit time.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) ReadSection(ctx context.Context, path string) (map[string]any, error) {
	var doc bson.M
	err := s.col.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, wrapMongoErr(err)
	}
	delete(doc, "_id")
	return normalize(doc).(map[string]any), nil
}

func (s *MongoStore) ReadMetadata(ctx context.Context, path string) (*content.Metadata, error) {
	var doc struct {
		Metadata *content.Metadata `bson:"metadata"`
	}
	opts := options.FindOne().SetProjection(bson.M{content.MetadataKey: 1})
	if err := s.col.FindOne(ctx, bson.M{"_id": path}, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, wrapMongoErr(err)
	}
	return doc.Metadata, nil
}

func (s *MongoStore) MergeWrite(ctx context.Context, path string, partial map[string]any) (*content.Metadata, error) {
	set := bson.M{}
	unset := bson.M{}
	currentDate := bson.M{}
	for k, v := range partial {
		if k == content.MetadataKey {
			// metadata is written as dotted sub-keys so updatedAt can go
			// through $currentDate while the identity fields go through $set
			meta, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("merge write %q: metadata must be a map", path)
			}
			for mk, mv := range meta {
				if content.IsServerTimestamp(mv) {
					currentDate[content.MetadataKey+"."+mk] = true
				} else {
					set[content.MetadataKey+"."+mk] = mv
				}
			}
			if _, ok := meta["updatedByUid"]; !ok {
				unset[content.MetadataKey+".updatedByUid"] = ""
			}
			continue
		}
		if content.IsServerTimestamp(v) {
			currentDate[k] = true
			continue
		}
		set[k] = v
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(currentDate) > 0 {
		update["$currentDate"] = currentDate
	}
	if len(update) == 0 {
		return s.ReadMetadata(ctx, path)
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{content.MetadataKey: 1})
	var doc struct {
		Metadata *content.Metadata `bson:"metadata"`
	}
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": path}, update, opts).Decode(&doc); err != nil {
		return nil, wrapMongoErr(err)
	}
	return doc.Metadata, nil
}

func (s *MongoStore) DeleteItem(ctx context.Context, path, itemKey string) error {
	update := bson.M{"$unset": bson.M{itemKey: ""}}
	if _, err := s.col.UpdateOne(ctx, bson.M{"_id": path}, update); err != nil {
		return wrapMongoErr(err)
	}
	return nil
}

// wrapMongoErr tags authorization failures with content.ErrPermission so the
// error taxonomy survives the driver boundary. Everything else passes through.
func wrapMongoErr(err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 13 {
		return fmt.Errorf("%w: %s", content.ErrPermission, cmdErr.Message)
	}
	return err
}

// normalize converts driver map/array types into plain map[string]any /
// []any and BSON dates into time.Time, so payloads look the same regardless
// of which store produced them.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
